// Package metrics exposes Prometheus collectors for the backend.
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

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	articlesIngestedTotal      *prometheus.CounterVec
	articlesSkippedTotal       *prometheus.CounterVec
	scrapePagesTotal           *prometheus.CounterVec
	votesCastTotal             *prometheus.CounterVec
	schedulerRunsTotal         *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
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
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		articlesIngestedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsbackend_articles_ingested_total",
				Help: "Total number of articles inserted by the loader, labeled by category.",
			},
			[]string{"category"},
		)

		articlesSkippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsbackend_articles_skipped_total",
				Help: "Total number of duplicate articles skipped by the loader, labeled by category.",
			},
			[]string{"category"},
		)

		scrapePagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsbackend_scrape_pages_total",
				Help: "Total number of pages scraped, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		votesCastTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsbackend_votes_cast_total",
				Help: "Total number of bias votes recorded, labeled by verdict.",
			},
			[]string{"verdict"},
		)

		schedulerRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsbackend_scheduler_runs_total",
				Help: "Total number of scheduled scrape-and-load runs, labeled by status.",
			},
			[]string{"status"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latencies for every route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		ObserveHTTPRequest(r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveIngest records the loader's per-category insert and skip counts.
func ObserveIngest(category string, inserted, skipped int) {
	articlesIngestedTotal.WithLabelValues(category).Add(float64(inserted))
	articlesSkippedTotal.WithLabelValues(category).Add(float64(skipped))
}

// ObserveScrape increments the scrape counter for the given outcome.
func ObserveScrape(outcome string) {
	scrapePagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveVote increments the vote counter for the given verdict.
func ObserveVote(isBiased bool) {
	verdict := "not_biased"
	if isBiased {
		verdict = "biased"
	}
	votesCastTotal.WithLabelValues(verdict).Inc()
}

// ObserveSchedulerRun increments the run counter for the given status.
func ObserveSchedulerRun(status string) {
	schedulerRunsTotal.WithLabelValues(status).Inc()
}
