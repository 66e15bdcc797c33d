package metrics

import "github.com/prometheus/client_golang/prometheus"

// GateMetrics exposes counters/histograms for the identifier gate.
type GateMetrics struct {
	checksTotal     *prometheus.CounterVec
	reasonHits      *prometheus.CounterVec
	checkLatency    prometheus.Histogram
	providerLatency prometheus.Histogram
}

func NewGateMetrics(reg prometheus.Registerer) *GateMetrics {
	m := &GateMetrics{
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notetool",
			Subsystem: "gate",
			Name:      "checks_total",
			Help:      "Total note checks by decision",
		}, []string{"decision"}),
		reasonHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notetool",
			Subsystem: "gate",
			Name:      "reason_hits_total",
			Help:      "Identifier detections by reason category",
		}, []string{"reason"}),
		checkLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "notetool",
			Subsystem: "gate",
			Name:      "check_latency_seconds",
			Help:      "Latency of the identifier check",
			Buckets:   prometheus.DefBuckets,
		}),
		providerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "notetool",
			Subsystem: "gate",
			Name:      "provider_latency_seconds",
			Help:      "Latency of the upstream model call",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.checksTotal, m.reasonHits, m.checkLatency, m.providerLatency)
	return m
}

func (m *GateMetrics) ObserveCheck(decision string, seconds float64) {
	if m == nil {
		return
	}
	m.checksTotal.WithLabelValues(decision).Inc()
	m.checkLatency.Observe(seconds)
}

func (m *GateMetrics) ObserveReasons(reasons []string) {
	if m == nil {
		return
	}
	for _, r := range reasons {
		m.reasonHits.WithLabelValues(r).Inc()
	}
}

func (m *GateMetrics) ObserveProviderLatency(seconds float64) {
	if m == nil {
		return
	}
	m.providerLatency.Observe(seconds)
}
