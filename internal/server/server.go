// Package server provides the HTTP server for the assistd API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/assistd-ai/assistd/internal/chat"
	"github.com/assistd-ai/assistd/internal/event"
	"github.com/assistd-ai/assistd/internal/provider"
	"github.com/assistd-ai/assistd/pkg/types"
)

// Config holds server configuration.
type Config struct {
	Host         string
	Port         int
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:         "0.0.0.0",
		Port:         8000,
		CORSOrigins:  []string{"*"},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for SSE
	}
}

// Server is the HTTP server.
type Server struct {
	config       *Config
	router       *chi.Mux
	httpSrv      *http.Server
	appConfig    *types.Config
	orchestrator *chat.Orchestrator
	llm          provider.Client
	bus          *event.Bus
}

// New creates a new Server instance.
func New(cfg *Config, appConfig *types.Config, orchestrator *chat.Orchestrator, llm provider.Client, bus *event.Bus) *Server {
	s := &Server{
		config:       cfg,
		router:       chi.NewRouter(),
		appConfig:    appConfig,
		orchestrator: orchestrator,
		llm:          llm,
		bus:          bus,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
