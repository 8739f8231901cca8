package metrics

import "github.com/prometheus/client_golang/prometheus"

// Advice outcomes recorded on aika_advice_requests_total.
const (
	OutcomeOK         = "ok"
	OutcomeFallback   = "fallback"
	OutcomeDiagnostic = "diagnostic"
	OutcomeEmpty      = "empty"
)

// AdviceMetrics exposes counters/histograms for advice generation and journaling.
type AdviceMetrics struct {
	requestsTotal  *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	journalEntries *prometheus.CounterVec
}

func NewAdviceMetrics(reg prometheus.Registerer) *AdviceMetrics {
	m := &AdviceMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aika",
			Subsystem: "advice",
			Name:      "requests_total",
			Help:      "Total advice requests by provider and outcome",
		}, []string{"provider", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aika",
			Subsystem: "advice",
			Name:      "latency_seconds",
			Help:      "Latency of upstream advice generation",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
		}, []string{"provider"}),
		journalEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aika",
			Subsystem: "journal",
			Name:      "entries_total",
			Help:      "Total journal entries stored by kind",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.latency, m.journalEntries)
	return m
}

func (m *AdviceMetrics) ObserveAdvice(provider, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(provider, outcome).Inc()
	m.latency.WithLabelValues(provider).Observe(seconds)
}

func (m *AdviceMetrics) ObserveJournalEntry(kind string) {
	if m == nil {
		return
	}
	m.journalEntries.WithLabelValues(kind).Inc()
}
