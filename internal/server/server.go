// Package server exposes the defectwatch core over a read-only HTTP JSON API:
// recalls and complaints by vehicle, complaint statistics and trends, narrative
// search, and VIN decoding. It is a thin caller of the core packages; nothing
// here holds state beyond the disk cache the client already owns.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mkoval/defectwatch/internal/enrich"
	"github.com/mkoval/defectwatch/internal/nhtsa"
)

// Config holds server configuration.
type Config struct {
	Port        int
	MaxRecords  int // default enrichment batch cap
	Concurrency int // default enrichment fan-out
}

// Server serves the read-only API over an NHTSA client and an enrichment
// pipeline.
type Server struct {
	httpServer *http.Server
	client     *nhtsa.Client
	pipeline   *enrich.Pipeline
	cfg        Config
	log        *zap.Logger
}

// New creates a server instance. A nil logger is replaced with a no-op logger.
func New(cfg Config, client *nhtsa.Client, pipeline *enrich.Pipeline, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		client:   client,
		pipeline: pipeline,
		cfg:      cfg,
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /recalls", s.handleRecalls)
	mux.HandleFunc("GET /complaints", s.handleComplaints)
	mux.HandleFunc("GET /complaints/stats", s.handleComplaintStats)
	mux.HandleFunc("GET /complaints/trend", s.handleComplaintTrend)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /vin/{vin}", s.handleVIN)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // enrichment fans out many upstream fetches
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	s.log.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// withLogging logs each request with its duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
