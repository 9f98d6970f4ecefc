package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsum_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsum_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ttsAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsum_tts_attempts_total",
			Help: "Speech synthesis attempts by voice strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	ttsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docsum_tts_duration_seconds",
		Help:    "End-to-end speech synthesis duration including fallbacks",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	summariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsum_summaries_total",
			Help: "Summaries generated by outcome",
		},
		[]string{"outcome"},
	)

	summaryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docsum_summary_duration_seconds",
		Help:    "Summary generation duration in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	})

	documentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsum_documents_total",
			Help: "Document mutations by action",
		},
		[]string{"action"},
	)

	panicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsum_http_panics_total",
			Help: "Recovered handler panics by route",
		},
		[]string{"route"},
	)

	documentsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsum_documents_processed_total",
			Help: "Background document processing jobs by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveTTSAttempt counts a single vendor call for a voice strategy.
func ObserveTTSAttempt(strategy, outcome string) {
	ttsAttemptsTotal.WithLabelValues(strategy, outcome).Inc()
}

// ObserveTTSDuration records the time spent across all strategies.
func ObserveTTSDuration(d time.Duration) {
	ttsDuration.Observe(d.Seconds())
}

// ObserveSummary records a summarization run.
func ObserveSummary(outcome string, d time.Duration) {
	summariesTotal.WithLabelValues(outcome).Inc()
	summaryDuration.Observe(d.Seconds())
}

// IncDocument counts a document mutation such as "created" or "deleted".
func IncDocument(action string) {
	documentsTotal.WithLabelValues(action).Inc()
}

// IncDocumentProcessed counts a finished background job.
func IncDocumentProcessed(outcome string) {
	documentsProcessedTotal.WithLabelValues(outcome).Inc()
}

// IncPanic counts a recovered panic on route.
func IncPanic(route string) {
	if route == "" {
		route = "unmatched"
	}
	panicsTotal.WithLabelValues(route).Inc()
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
