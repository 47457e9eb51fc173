// Package api serves the operational endpoints during long crawl runs.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alexandrainst/lrytas-scraper/internal/metrics"
)

// NewRouter builds the ops router: liveness plus Prometheus exposition.
func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	return r
}

// Serve starts the ops server in the background. Crawls run for hours
// between politeness delays, so a liveness surface is worth the goroutine.
// Errors are logged, not fatal: losing metrics must not kill a crawl.
func Serve(addr string, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("ops server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("ops server stopped", zap.Error(err))
		}
	}()
}
