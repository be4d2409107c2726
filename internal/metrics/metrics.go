package metrics

import (
	"github.com/kutoven/wbreviews/internal/engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wbreviews"

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Scrape job metrics
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Finished scrape jobs by outcome (ok or error code)",
		},
		[]string{"outcome"},
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_in_flight",
			Help:      "Scrape jobs currently running",
		},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of a scrape job",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	ReviewsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_extracted_total",
			Help:      "Reviews written to CSV artifacts",
		},
	)

	ReviewsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_skipped_total",
			Help:      "Review containers that could not be parsed",
		},
	)

	ScrollIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scroll_iterations",
			Help:      "Scrolls needed before the review feed converged",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 8),
		},
	)
)

// Outcome labels a finished job: "ok", the engine error code, or "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := engine.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}
