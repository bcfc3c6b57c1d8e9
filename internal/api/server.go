// Package api serves the portal screens as a JSON API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/conversation"
	"github.com/xaenox/hr-hub/internal/locale"
	"github.com/xaenox/hr-hub/internal/notify"
	"github.com/xaenox/hr-hub/internal/requests"
	"github.com/xaenox/hr-hub/internal/storage"
)

type Handler struct {
	store         storage.Storage
	flow          *requests.Flow
	chats         *conversation.Manager
	feed          *notify.Feed
	employeeID    string
	defaultLocale string
	logger        *zap.Logger
}

func NewHandler(store storage.Storage, flow *requests.Flow, chats *conversation.Manager, feed *notify.Feed, employeeID, defaultLocale string, logger *zap.Logger) *Handler {
	return &Handler{
		store:         store,
		flow:          flow,
		chats:         chats,
		feed:          feed,
		employeeID:    employeeID,
		defaultLocale: defaultLocale,
		logger:        logger,
	}
}

// Routes builds the router for every portal endpoint
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/navigation", h.Navigation)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/services", h.Services)
		r.Get("/requests", h.ListRequests)
		r.Get("/notifications", h.Notifications)

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Get("/{id}", h.GetPolicy)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", h.OpenDraft)
			r.Get("/{id}", h.GetDraft)
			r.Put("/{id}/fields", h.SetDraftFields)
			r.Post("/{id}/submit", h.SubmitDraft)
			r.Post("/{id}/cancel", h.CancelDraft)
			r.Post("/{id}/reopen", h.ReopenDraft)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/", h.ChatHistory)
			r.Post("/", h.SendChat)
		})
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())))
	})
}

// viewer picks the formatter for the caller's Accept-Language
func (h *Handler) viewer(r *http.Request) *locale.Formatter {
	return locale.FromAcceptLanguage(r.Header.Get("Accept-Language"), h.defaultLocale)
}
