package metrics

import "github.com/prometheus/client_golang/prometheus"

// GuidanceMetrics exposes counters/histograms for the pastoral-guidance
// pipeline. A nil receiver is safe everywhere so wiring stays optional.
type GuidanceMetrics struct {
	requestsTotal     *prometheus.CounterVec
	escalationsTotal  *prometheus.CounterVec
	generationLatency prometheus.Histogram
	retrievalFailures prometheus.Counter
}

func NewGuidanceMetrics(reg prometheus.Registerer) *GuidanceMetrics {
	m := &GuidanceMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "busypreacher",
			Subsystem: "guidance",
			Name:      "requests_total",
			Help:      "Total guidance requests by classification label",
		}, []string{"label"}),
		escalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "busypreacher",
			Subsystem: "guidance",
			Name:      "escalations_total",
			Help:      "Total escalation events by notification type",
		}, []string{"type"}),
		generationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "busypreacher",
			Subsystem: "guidance",
			Name:      "generation_latency_seconds",
			Help:      "Latency of reply generation",
			Buckets:   prometheus.DefBuckets,
		}),
		retrievalFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "busypreacher",
			Subsystem: "guidance",
			Name:      "retrieval_failures_total",
			Help:      "Sermon search calls that returned no usable result",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.escalationsTotal, m.generationLatency, m.retrievalFailures)
	return m
}

func (m *GuidanceMetrics) ObserveRequest(label string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(label).Inc()
}

func (m *GuidanceMetrics) ObserveEscalation(notifType string) {
	if m == nil {
		return
	}
	m.escalationsTotal.WithLabelValues(notifType).Inc()
}

func (m *GuidanceMetrics) ObserveGenerationLatency(seconds float64) {
	if m == nil {
		return
	}
	m.generationLatency.Observe(seconds)
}

func (m *GuidanceMetrics) ObserveRetrievalFailure() {
	if m == nil {
		return
	}
	m.retrievalFailures.Inc()
}
