package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus collectors for the phonetracer service
var (
	// phonetracer_analyses_total{level,source}
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonetracer_analyses_total",
		Help: "Number of risk analyses by risk level and text source",
	}, []string{"level", "source"})

	// phonetracer_chats_total{source}
	ChatsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonetracer_chats_total",
		Help: "Number of chat answers by text source",
	}, []string{"source"})

	// phonetracer_generation_seconds (histogram): text generator latency
	GenerationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phonetracer_generation_seconds",
		Help:    "Latency of text generator calls in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	// phonetracer_generation_failures_total{reason}
	GenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonetracer_generation_failures_total",
		Help: "Text generator calls that produced no usable text",
	}, []string{"reason"})

	// phonetracer_traces_total{valid=true|false}
	TracesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonetracer_traces_total",
		Help: "Number of phone number traces by validity",
	}, []string{"valid"})

	// phonetracer_reports_total{type}
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonetracer_reports_total",
		Help: "Number of community reports submitted by type",
	}, []string{"type"})
)

// RecordAnalysis increments the analysis counter
func RecordAnalysis(level, source string) {
	AnalysesTotal.WithLabelValues(level, source).Inc()
}

// RecordChat increments the chat counter
func RecordChat(source string) {
	ChatsTotal.WithLabelValues(source).Inc()
}

// ObserveGeneration records the latency of one generator call
func ObserveGeneration(d time.Duration) {
	GenerationLatency.Observe(d.Seconds())
}

// RecordGenerationFailure increments the failure counter for a reason label
func RecordGenerationFailure(reason string) {
	GenerationFailures.WithLabelValues(reason).Inc()
}

// RecordTrace increments the trace counter
func RecordTrace(valid bool) {
	label := "false"
	if valid {
		label = "true"
	}
	TracesTotal.WithLabelValues(label).Inc()
}

// RecordReport increments the report counter.
// Unknown types are folded into "other" to bound label cardinality.
func RecordReport(reportType string, known bool) {
	if !known {
		reportType = "other"
	}
	ReportsTotal.WithLabelValues(reportType).Inc()
}

// Handler serves the default registry for /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
