// Package api serves the dashboard page, its charts and the report in
// alternative formats over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/charts"
	"github.com/lox/bikeshare/internal/store"
)

type Server struct {
	report   *analysis.Report
	renderer *charts.Renderer
	store    *store.Store
	insight  string
	port     string
	logger   *zap.Logger
}

// NewServer serves a single built report. store may be nil when snapshot
// storage is disabled; insight may be empty.
func NewServer(report *analysis.Report, renderer *charts.Renderer, store *store.Store, insight, port string, logger *zap.Logger) *Server {
	return &Server{
		report:   report,
		renderer: renderer,
		store:    store,
		insight:  insight,
		port:     port,
		logger:   logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/charts/", s.handleChart)
	mux.HandleFunc("/og.png", s.handleShareImage)
	mux.HandleFunc("/report.md", s.handleMarkdown)
	mux.HandleFunc("/report.txt", s.handleText)
	mux.HandleFunc("/api/report", s.handleAPIReport)
	mux.HandleFunc("/api/snapshots", s.handleAPISnapshots)
	mux.HandleFunc("/api/snapshots/", s.handleAPISnapshot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("dashboard listening", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
