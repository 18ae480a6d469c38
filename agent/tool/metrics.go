package tool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeError    = "error"
	outcomeRejected = "rejected"

	unknownToolLabel = "unknown"
)

var (
	toolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receptionist_tool_invocations_total",
			Help: "Tool calls by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receptionist_tool_duration_seconds",
			Help:    "Tool handler latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)
)

func observe(tool, outcome string) {
	toolInvocations.WithLabelValues(tool, outcome).Inc()
}

func timer(tool string) func() {
	start := time.Now()
	return func() {
		toolDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
	}
}
