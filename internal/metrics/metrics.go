// Package metrics exposes Prometheus collectors for the import service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	fetchAttemptsTotal         *prometheus.CounterVec
	scrapesTotal               *prometheus.CounterVec
	importStepsTotal           *prometheus.CounterVec
	webhooksTotal              *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yonoox_fetch_attempts_total",
				Help: "Page fetch attempts, labeled by fetch path and outcome.",
			},
			[]string{"path", "outcome"},
		)

		scrapesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yonoox_scrapes_total",
				Help: "Completed extractions, labeled by the strategy that produced the record and outcome.",
			},
			[]string{"strategy", "outcome"},
		)

		importStepsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yonoox_import_steps_total",
				Help: "Remote mutations issued by the importer, labeled by step and outcome.",
			},
			[]string{"step", "outcome"},
		)

		webhooksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yonoox_webhooks_total",
				Help: "Inbound platform notifications, labeled by topic and outcome.",
			},
			[]string{"topic", "outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// ObserveFetch counts one fetch attempt on the given path ("direct" or "proxy").
func ObserveFetch(path, outcome string) {
	Init()
	fetchAttemptsTotal.WithLabelValues(path, outcome).Inc()
}

// ObserveScrape counts one extraction.
func ObserveScrape(strategy, outcome string) {
	Init()
	scrapesTotal.WithLabelValues(strategy, outcome).Inc()
}

// ObserveImportStep counts one importer mutation.
func ObserveImportStep(step, outcome string) {
	Init()
	importStepsTotal.WithLabelValues(step, outcome).Inc()
}

// ObserveWebhook counts one inbound notification.
func ObserveWebhook(topic, outcome string) {
	Init()
	webhooksTotal.WithLabelValues(topic, outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
