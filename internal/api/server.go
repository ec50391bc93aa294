// Package api provides the HTTP API server and handlers for the RebelPost application.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rebelpost/rebelpost-server/internal/avatar"
	"github.com/rebelpost/rebelpost-server/internal/config"
	"github.com/rebelpost/rebelpost-server/internal/sse"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	config     *config.Config
	store      *store.Store
	services   *Services
	sseHandler *sse.Handler
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, st *store.Store, services *Services, sseHandler *sse.Handler, logger *slog.Logger) *Server {
	s := &Server{
		config:     cfg,
		store:      st,
		services:   services,
		sseHandler: sseHandler,
		router:     chi.NewRouter(),
		logger:     logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(cfg.Server.Name, "1.0.0")
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerPostRoutes()
	s.registerVoteRoutes()
	s.registerProfileRoutes()
	s.registerHashtagRoutes()
	s.registerPasskeyRoutes()
	s.registerSearchRoutes()

	// Non-huma routes: the SSE stream writes its own headers, and
	// avatars are raw SVG bytes.
	s.router.Get("/api/v1/feed/stream", s.sseHandler.ServeHTTP)
	s.router.Get("/avatars/{userKey}.svg", s.handleAvatar)
}

// handleAvatar renders the deterministic identity avatar for a user key.
func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	userKey := chi.URLParam(r, "userKey")
	if userKey == "" {
		http.Error(w, "user key is required", http.StatusBadRequest)
		return
	}

	size := 240
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 16 || n > 1024 {
			http.Error(w, "size must be between 16 and 1024", http.StatusBadRequest)
			return
		}
		size = n
	}

	svg := avatar.Render(userKey, size)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if _, err := w.Write(svg); err != nil {
		s.logger.Debug("avatar write failed", "error", err)
	}
}
