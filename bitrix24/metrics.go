package bitrix24

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-method call statistics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewMetrics registers the client metrics on reg. A nil registerer returns
// a Metrics that records nothing.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bitrix24",
		Name:      "call_duration_seconds",
		Help:      "Duration of REST method calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitrix24",
		Name:      "call_failures_total",
		Help:      "REST method calls that returned an error, by error code.",
	}, []string{"method", "code"})
	reg.MustRegister(duration, failures)
	return &Metrics{
		duration: duration,
		failures: failures,
	}
}

// observeCall records a completed round trip. code is empty on success.
func (m *Metrics) observeCall(method, code string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(method)).Observe(elapsed.Seconds())
	if code != "" {
		m.observeFailure(method, code)
	}
}

func (m *Metrics) observeFailure(method, code string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(method), normalizeLabel(code)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
