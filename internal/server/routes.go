package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/message", s.handleChatMessage)
			r.Post("/message/stream", s.handleChatMessageStream)

			r.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleEndSession)
				r.Get("/export", s.handleExportSession)
			})

			r.Get("/stats", s.handleChatStats)
		})

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", s.handleListTools)
			r.Post("/execute", s.handleExecuteTool)
			r.Get("/{toolName}", s.handleDescribeTool)
		})

		r.Post("/upload", s.handleUpload)
		r.Get("/models", s.handleListModels)
		r.Get("/health", s.handleHealth)
		r.Get("/events", s.handleEvents)
	})

	s.router.Handle("/metrics", promhttp.Handler())
}
