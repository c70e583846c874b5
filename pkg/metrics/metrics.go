// Package metrics exposes pipeline counters for Prometheus scraping.
package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline counters. Each run increments them; a scheduled
// deployment scrapes them via Serve.
type Metrics struct {
	ReportsProcessed prometheus.Counter
	ReportsMatched   prometheus.Counter
	ExtractionErrors prometheus.Counter
	DraftsCreated    prometheus.Counter
	EmailsSent       prometheus.Counter
	EmailsFailed     prometheus.Counter

	registry *prometheus.Registry
}

// New builds the counter set on a private registry so tests never collide.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		ReportsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "reports_processed_total",
			Help: "PDF reports pulled from the mailbox and run through extraction.",
		}),
		ReportsMatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "reports_matched_total",
			Help: "Reports matched to a roster client.",
		}),
		ExtractionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "extraction_errors_total",
			Help: "Reports that produced at least one extraction error.",
		}),
		DraftsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "drafts_created_total",
			Help: "Emails generated and staged for review.",
		}),
		EmailsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Approved emails delivered.",
		}),
		EmailsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "emails_failed_total",
			Help: "Approved emails that failed to deliver.",
		}),
		registry: registry,
	}
}

// Serve exposes /metrics on addr in a background goroutine.
func (m *Metrics) Serve(port int, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	go func() {
		addr := fmt.Sprintf(":%d", port)
		server := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("metrics server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()
}
