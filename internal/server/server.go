// Package server provides the HTTP API for wonderland.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/wonderland/internal/config"
	"github.com/hyperjump/wonderland/internal/query"
	"github.com/hyperjump/wonderland/internal/vectordb"
	"github.com/hyperjump/wonderland/pkg/utils"
)

// maxBodyBytes caps the size of a query request body.
const maxBodyBytes = 1 << 20

// Server is the HTTP server for the wonderland API.
type Server struct {
	query  *query.Service
	db     *vectordb.DB
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies. db may be nil when the index
// failed to load; the server then runs in degraded mode.
func NewServer(svc *query.Service, db *vectordb.DB, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		query:  svc,
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors(s.config.CORSOrigins))

	r.Post("/api/query", s.handleQuery)
	r.Get("/api/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if s.config.TracingOrDefault() {
		return otelhttp.NewHandler(r, utils.ServiceName)
	}
	return r
}

// Start starts the HTTP server and blocks until it stops. It returns nil after Stop.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server",
		zap.String("addr", addr),
		zap.Bool("vector_db_loaded", s.query.Available()))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
