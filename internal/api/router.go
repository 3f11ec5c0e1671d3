package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/swipeit/chatrelay/internal/api/middleware"
	"github.com/swipeit/chatrelay/internal/handlers"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024)) // 16KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - the relay serves local front-ends; origins are not restricted
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/healthz", h.Health)

	r.Get("/conversations", h.ListConversations)
	r.Post("/conversations/{matchID}/activate", h.ActivateConversation)
	r.Get("/conversations/{matchID}/messages", h.GetMessages)
	r.Post("/conversations/{matchID}/messages", h.SendMessage)

	r.Post("/events/open-chat", h.OpenChat)
	r.Get("/participants/{id}", h.GetParticipant)

	return r
}
