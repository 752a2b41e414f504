package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"statcore/app"
	"statcore/internal"
	"statcore/internal/config"
	"statcore/internal/format"
)

const maxBodyBytes = 10 << 20

// Server exposes the analysis service over HTTP JSON
type Server struct {
	router    *chi.Mux
	service   *app.AnalysisService
	log       *internal.Logger
	metrics   *Metrics
	precision format.Precision
	addr      string
}

// NewServer builds the router for service using cfg's port and output digits.
func NewServer(cfg *config.Config, service *app.AnalysisService, logger *internal.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		service:   service,
		log:       logger.With("APIServer"),
		metrics:   NewMetrics(),
		precision: format.Precision{Stat: cfg.Output.StatDigits, Effect: cfg.Output.EffectDigits},
		addr:      ":" + cfg.Server.Port,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.metrics.Middleware)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/describe", s.handleDescribe)
		r.Post("/ttest/one-sample", s.handleOneSample)
		r.Post("/ttest/two-sample", s.handleTwoSample)
		r.Post("/ttest/paired", s.handlePaired)
		r.Post("/correlation/pearson", s.handlePearson)
		r.Post("/correct", s.handleCorrect)
		r.Post("/batch", s.handleBatch)
	})
}

// Handler returns the root handler, used by tests and embedding callers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
