package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AccessMetrics records access resolver activity per surface (cart, checkout,
// order, split_item) and outcome (allowed, denied, neutral).
type AccessMetrics struct {
	decisions *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewAccessMetrics registers the access resolver metrics on the provided registerer.
func NewAccessMetrics(reg prometheus.Registerer) *AccessMetrics {
	if reg == nil {
		return &AccessMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "access_decisions_total",
		Help: "Access decisions grouped by surface and outcome.",
	}, []string{"surface", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "access_resolve_duration_seconds",
		Help:    "Duration of access resolution in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"surface"})
	reg.MustRegister(decisions, duration)
	return &AccessMetrics{
		decisions: decisions,
		duration:  duration,
	}
}

// ObserveDecision increments the decision counter for the surface/outcome pair.
func (a *AccessMetrics) ObserveDecision(surface, outcome string) {
	if a == nil || a.decisions == nil {
		return
	}
	a.decisions.WithLabelValues(normalizeLabel(surface), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records how long a resolution took for the given surface.
func (a *AccessMetrics) ObserveDuration(surface string, duration time.Duration) {
	if a == nil || a.duration == nil {
		return
	}
	a.duration.WithLabelValues(normalizeLabel(surface)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
