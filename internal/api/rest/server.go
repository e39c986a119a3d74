package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fortuna/hoops/internal/backfill"
	"github.com/fortuna/hoops/internal/logging"
)

// Options wires the server's dependencies. Backfill and Stream are optional.
type Options struct {
	Port     string
	Scraper  Scraper
	Backfill *backfill.Service
	Stream   http.Handler
	Logger   *zap.Logger
}

// Server represents the REST API server
type Server struct {
	port   string
	router *mux.Router
	server *http.Server
	logger *zap.Logger
}

// NewServer creates a new REST API server
func NewServer(opts Options) *Server {
	logger := logging.OrNop(opts.Logger).Named("rest")
	handler := NewHandler(opts.Scraper, logger)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Schedules
	api.HandleFunc("/schedule/{season:[0-9]{4}}", handler.GetAllSchedule).Methods(http.MethodGet)
	api.HandleFunc("/teams/{team}/schedule/{season:[0-9]{4}}", handler.GetTeamSchedule).Methods(http.MethodGet)

	// Teams
	api.HandleFunc("/teams/{team}/roster/{season:[0-9]{4}}", handler.GetRoster).Methods(http.MethodGet)
	api.HandleFunc("/teams/{team}/injuries/{season:[0-9]{4}}", handler.GetInjuryReport).Methods(http.MethodGet)

	// Games
	api.HandleFunc("/boxscores/{game}", handler.GetBoxscore).Methods(http.MethodGet)
	api.HandleFunc("/boxscores/{game}/summary", handler.GetGameSummary).Methods(http.MethodGet)

	api.HandleFunc("/cache/stats", handler.GetCacheStats).Methods(http.MethodGet)

	if opts.Backfill != nil {
		backfillHandler := NewBackfillHandler(opts.Backfill)
		api.HandleFunc("/backfill", backfillHandler.HandleBackfillRequest).Methods(http.MethodPost)
		api.HandleFunc("/backfill/status", backfillHandler.HandleBackfillStatus).Methods(http.MethodGet)
		api.HandleFunc("/backfill/{jobID}", backfillHandler.HandleBackfillJob).Methods(http.MethodGet)
	}

	if opts.Stream != nil {
		router.PathPrefix("/ws/").Handler(opts.Stream)
	}

	return &Server{
		port:   opts.Port,
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", opts.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start starts the REST API server
func (s *Server) Start() error {
	s.logger.Info("REST server listening", zap.String("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
