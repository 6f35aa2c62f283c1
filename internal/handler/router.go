package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/athena-chat/athena/internal/middleware"
	"github.com/athena-chat/athena/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Health        *HealthHandler
	Session       *SessionHandler
	Conversations *ConversationHandler
	Messages      *MessageHandler
	Personas      *PersonaHandler
}

// RouterOptions configures the router middleware.
type RouterOptions struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter mounts every endpoint on a chi router.
func NewRouter(h Handlers, opts RouterOptions, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimitRequests > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitRequests, opts.RateLimitWindow))
		}

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.Session.Get)
			r.Put("/model", h.Session.SelectModel)
			r.Post("/messages", h.Messages.SendActive)

			r.Put("/conversation", h.Conversations.RenameActive)
			r.Delete("/conversation", h.Conversations.DeleteActive)
			r.Post("/conversation/clear", h.Conversations.ClearActive)
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", h.Conversations.List)
			r.Post("/", h.Conversations.Create)
			r.Post("/save", h.Conversations.Save)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Conversations.Get)
				r.Put("/", h.Conversations.Rename)
				r.Delete("/", h.Conversations.Delete)
				r.Post("/clear", h.Conversations.Clear)
				r.Post("/select", h.Conversations.Select)
				r.Post("/messages", h.Messages.Send)
			})
		})

		r.Route("/personas", func(r chi.Router) {
			r.Get("/", h.Personas.List)
			r.Post("/", h.Personas.Upsert)
			r.Post("/select", h.Personas.Select)

			r.Get("/editor", h.Personas.Editor)
			r.Put("/editor", h.Personas.Edit)
			r.Delete("/editor", h.Personas.New)
			r.Post("/editor/save", h.Personas.SaveEditor)
		})
	})

	return r
}
