package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	workoutsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workouts_created_total",
			Help: "Total number of workouts created",
		},
	)

	workoutsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workouts_completed_total",
			Help: "Total number of workouts marked completed",
		},
		[]string{"source"},
	)

	dayViewCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "day_view_cache_total",
			Help: "Total number of day-view lookups by cache outcome",
		},
		[]string{"hit"},
	)
)

// MetricsMiddleware collects Prometheus metrics for every HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		httpRequestsInFlight.Inc()

		// Route pattern, not the raw path, so path parameters don't blow
		// up label cardinality.
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordWorkoutCreated counts one successful aggregate creation.
func RecordWorkoutCreated() {
	workoutsCreatedTotal.Inc()
}

// RecordWorkoutCompleted counts one completion; source is "user" or "scheduler".
func RecordWorkoutCompleted(source string) {
	workoutsCompletedTotal.WithLabelValues(source).Inc()
}

// RecordDayViewLookup counts one day-view read by cache outcome.
func RecordDayViewLookup(cacheHit bool) {
	hit := "false"
	if cacheHit {
		hit = "true"
	}
	dayViewCacheTotal.WithLabelValues(hit).Inc()
}
