// Package metrics exposes the pipeline's prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/timmy/hotelsense/internal/logger"
)

const namespace = "hotelsense"

// Item outcomes recorded by the stages.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

var (
	StageItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "stage_items_total", Help: "Items handled per stage and outcome."},
		[]string{"stage", "outcome"},
	)
	ClassifierLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "classifier_duration_seconds",
			Help:    "Vision model call duration seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"operation", "status"},
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "events_published_total", Help: "Continuation events published."},
		[]string{"topic", "status"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Registry holds every collector above. Use it instead of the global
// registry so tests can build fresh handlers.
var Registry = newRegistry()

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(StageItems, ClassifierLatency, EventsPublished, HTTPRequests, HTTPLatency)
	return reg
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveItem(stage, outcome string) {
	StageItems.WithLabelValues(stage, outcome).Inc()
}

func ObserveClassifier(operation string, err error, dur time.Duration) {
	ClassifierLatency.WithLabelValues(operation, status(err)).Observe(dur.Seconds())
}

func ObservePublish(topic string, err error) {
	EventsPublished.WithLabelValues(topic, status(err)).Inc()
}

func ObserveHTTP(route, method string, code int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Serve exposes /metrics on addr until ctx is done. An empty addr disables it.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.GetDefault().WithField("addr", addr).Info("Metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
