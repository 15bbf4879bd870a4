package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "profileplus"

var (
	registry = prometheus.NewRegistry()

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	analysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "analyses_total",
			Help:      "CV analyses by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "analysis_duration_seconds",
			Help:      "CV analysis latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	profileSaves = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profiles",
			Name:      "saves_total",
			Help:      "Profile save actions.",
		},
	)

	previewWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profiles",
			Name:      "preview_writes_total",
			Help:      "Preview slot writes.",
		},
	)

	storeReadFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "read_failures_total",
			Help:      "Store reads treated as empty because of backend or parse failures.",
		},
		[]string{"key"},
	)

	contactRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "requests_total",
			Help:      "Recruiter contact requests accepted.",
		},
	)

	contactDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "deliveries_total",
			Help:      "Contact notifications handled by the worker, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	registry.MustRegister(
		requestDuration,
		analysisTotal,
		analysisDuration,
		profileSaves,
		previewWrites,
		storeReadFailures,
		contactRequests,
		contactDeliveries,
	)
}

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisTotal.WithLabelValues("started").Inc()
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisTotal.WithLabelValues("completed").Inc()
}

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed() {
	analysisTotal.WithLabelValues("failed").Inc()
}

// IncAnalysisRejected counts calls refused because one was already in flight.
func IncAnalysisRejected() {
	analysisTotal.WithLabelValues("rejected").Inc()
}

// ObserveAnalysisDuration records an analysis duration.
func ObserveAnalysisDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	analysisDuration.Observe(d.Seconds())
}

// IncProfileSaves counts a profile save.
func IncProfileSaves() {
	profileSaves.Inc()
}

// IncPreviewWrites counts a preview slot write.
func IncPreviewWrites() {
	previewWrites.Inc()
}

// IncStoreReadFailure counts a soft-failed store read for key.
func IncStoreReadFailure(key string) {
	storeReadFailures.WithLabelValues(key).Inc()
}

// IncContactRequests counts an accepted contact request.
func IncContactRequests() {
	contactRequests.Inc()
}

// IncContactDeliveries counts a worker delivery outcome.
func IncContactDeliveries(outcome string) {
	contactDeliveries.WithLabelValues(outcome).Inc()
}

// Middleware records request latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

// Registry returns the registry backing Handler.
func Registry() *prometheus.Registry {
	return registry
}
