package integral

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// ============================================================
// Prometheus metrics
// ============================================================

var (
	// requestsTotal counts requests by outcome kind and mode
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integral_requests_total",
		Help: "Integration requests by outcome and mode",
	}, []string{"outcome", "mode"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "integral_request_duration_seconds",
		Help:    "Integration request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"mode"})

	stageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integral_stage_failures_total",
		Help: "Pipeline stage failures by stage and kind",
	}, []string{"stage", "kind"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "integral_stage_duration_seconds",
		Help:    "Pipeline stage duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 16),
	}, []string{"stage"})
)

var tracer = otel.Tracer("integral")

func outcome(k Kind) string {
	if k == KindNone {
		return "success"
	}
	return k.String()
}

func observeRequest(mode string, k Kind, d time.Duration) {
	requestsTotal.WithLabelValues(outcome(k), mode).Inc()
	requestDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func observeStage(stage string, d time.Duration, f *Failure) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if f != nil {
		stageFailures.WithLabelValues(stage, f.Kind.String()).Inc()
	}
}
