package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"campuspulse-backend/application/commands"
	cmdhandlers "campuspulse-backend/application/commands/handlers"
	"campuspulse-backend/application/queries"
	querybus "campuspulse-backend/application/queries/bus"
	"campuspulse-backend/application/services"
	"campuspulse-backend/domain/core/valueobjects"
	"campuspulse-backend/pkg/common"
	pkgerrors "campuspulse-backend/pkg/errors"
)

// PostHandler serves post creation, the detail view, and the
// optimistic vote and reaction toggles.
type PostHandler struct {
	queryBus    *querybus.QueryBus
	createPost  *cmdhandlers.CreatePostHandler
	createReply *cmdhandlers.CreateReplyHandler
	sessions    *services.SessionManager
	errors      *pkgerrors.ErrorHandler
	logger      *zap.Logger
}

// NewPostHandler creates a new post handler
func NewPostHandler(
	queryBus *querybus.QueryBus,
	createPost *cmdhandlers.CreatePostHandler,
	createReply *cmdhandlers.CreateReplyHandler,
	sessions *services.SessionManager,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *PostHandler {
	return &PostHandler{
		queryBus:    queryBus,
		createPost:  createPost,
		createReply: createReply,
		sessions:    sessions,
		errors:      errors,
		logger:      logger,
	}
}

type createPostRequest struct {
	Text        string `json:"text"`
	Category    string `json:"category"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// CreatePost handles POST /posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	cmd := commands.CreatePostCommand{
		AuthorID:    userID,
		Text:        req.Text,
		Category:    req.Category,
		IsAnonymous: req.IsAnonymous,
	}
	if err := cmd.Validate(); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	created, err := h.createPost.Handle(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":        created.ID,
		"category":  created.EffectiveCategory().String(),
		"createdAt": created.CreatedAt,
	})
}

// GetPost handles GET /posts/{postID}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	q := queries.GetPostQuery{
		UserID:    userID,
		PostID:    chi.URLParam(r, "postID"),
		ReplySort: r.URL.Query().Get("replySort"),
	}
	result, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

type voteRequest struct {
	Direction string `json:"direction"`
}

// CastVote handles POST /posts/{postID}/vote. The response reports
// how the toggle settled and the post's engagement as the caller now
// sees it; a failed commit surfaces as a rolled_back outcome, not an
// error status.
func (h *PostHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}
	postID := chi.URLParam(r, "postID")

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	direction := valueobjects.VoteDirection(req.Direction)
	if !direction.IsValid() {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("direction must be up or down"))
		return
	}

	session := h.sessions.Get(userID)
	outcome, err := session.Coordinator.CastVote(r.Context(), postID, direction)
	if outcome == "" {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondOutcome(w, session, postID, outcome)
}

type reactionRequest struct {
	ReactionType string `json:"reactionType"`
}

// CastReaction handles POST /posts/{postID}/reactions
func (h *PostHandler) CastReaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}
	postID := chi.URLParam(r, "postID")

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if req.ReactionType == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("reactionType is required"))
		return
	}

	session := h.sessions.Get(userID)
	outcome, err := session.Coordinator.CastReaction(r.Context(), postID, req.ReactionType)
	if outcome == "" {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondOutcome(w, session, postID, outcome)
}

func (h *PostHandler) respondOutcome(w http.ResponseWriter, session *services.Session, postID string, outcome services.Outcome) {
	engagement, _ := session.Store.Get(postID)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"outcome":    string(outcome),
		"engagement": engagement,
	})
}

type createReplyRequest struct {
	Text        string `json:"text"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// CreateReply handles POST /posts/{postID}/replies
func (h *PostHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	var req createReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	cmd := commands.CreateReplyCommand{
		ParentPostID: chi.URLParam(r, "postID"),
		AuthorID:     userID,
		Text:         req.Text,
		IsAnonymous:  req.IsAnonymous,
	}
	if err := cmd.Validate(); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	created, err := h.createReply.Handle(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":        created.ID,
		"postId":    created.ParentPostID,
		"createdAt": created.CreatedAt,
	})
}
