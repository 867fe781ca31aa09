package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"campuspulse-backend/application/queries"
	querybus "campuspulse-backend/application/queries/bus"
	"campuspulse-backend/application/services"
	"campuspulse-backend/pkg/common"
	pkgerrors "campuspulse-backend/pkg/errors"
)

// FeedHandler serves the ranked feed and the visibility refresh hook.
type FeedHandler struct {
	queryBus  *querybus.QueryBus
	scheduler *services.RefreshScheduler
	errors    *pkgerrors.ErrorHandler
	logger    *zap.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(
	queryBus *querybus.QueryBus,
	scheduler *services.RefreshScheduler,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *FeedHandler {
	return &FeedHandler{queryBus: queryBus, scheduler: scheduler, errors: errors, logger: logger}
}

// GetFeed handles GET /feed
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	page := common.ParsePageParams(r)
	q := queries.GetFeedQuery{
		UserID:     userID,
		SortMode:   r.URL.Query().Get("sort"),
		Category:   r.URL.Query().Get("category"),
		DateRange:  r.URL.Query().Get("dateRange"),
		HasReplies: r.URL.Query().Get("hasReplies"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if raw := r.URL.Query().Get("minUpvotes"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			q.MinUpvotes = v
		}
	}

	result, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// TriggerRefresh handles POST /refresh. Clients call it when they
// regain visibility; the next feed read then reflects fresh state.
func (h *FeedHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Trigger()
	common.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
}
