package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"campuspulse-backend/infrastructure/di"
	"campuspulse-backend/interfaces/http/rest/handlers"
	"campuspulse-backend/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container, logger: container.Logger}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger, c.Metrics))

	if c.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.campuspulse.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if c.Config.EnableMetrics {
		router.Handle("/metrics", c.Metrics.Handler())
	}

	feedHandler := handlers.NewFeedHandler(c.QueryBus, c.Scheduler, c.ErrorHandler, rt.logger)
	postHandler := handlers.NewPostHandler(c.QueryBus, c.CreatePostHandler, c.CreateReplyHandler, c.Sessions, c.ErrorHandler, rt.logger)
	notificationHandler := handlers.NewNotificationHandler(c.CommandBus, c.QueryBus, c.ErrorHandler, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(c.Config, rt.logger))

		r.Get("/feed", feedHandler.GetFeed)
		r.Post("/refresh", feedHandler.TriggerRefresh)

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", postHandler.CreatePost)
			r.Get("/{postID}", postHandler.GetPost)
			r.Post("/{postID}/vote", postHandler.CastVote)
			r.Post("/{postID}/reactions", postHandler.CastReaction)
			r.Post("/{postID}/replies", postHandler.CreateReply)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.GetNotifications)
			r.Post("/read-all", notificationHandler.MarkAllRead)
			r.Post("/{replyID}/read", notificationHandler.MarkRead)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
