package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the chat pipeline.
type ChatMetrics struct {
	turnsTotal         *prometheus.CounterVec
	knowledgeMatches   *prometheus.CounterVec
	completionLatency  *prometheus.HistogramVec
	fetchFailuresTotal *prometheus.CounterVec
	leadsCaptured      *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agency",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns by outcome (ok, fallback, cancelled, error)",
		}, []string{"outcome"}),
		knowledgeMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agency",
			Subsystem: "chat",
			Name:      "knowledge_match_total",
			Help:      "Chat turns that did or did not match the knowledge base",
		}, []string{"matched"}),
		completionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agency",
			Subsystem: "chat",
			Name:      "completion_latency_seconds",
			Help:      "Latency of completion calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "status"}),
		fetchFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agency",
			Subsystem: "chat",
			Name:      "fetch_failures_total",
			Help:      "Knowledge/config fetches that fell back to defaults",
		}, []string{"source"}),
		leadsCaptured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agency",
			Subsystem: "leads",
			Name:      "captured_total",
			Help:      "Leads captured by source",
		}, []string{"source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.knowledgeMatches, m.completionLatency, m.fetchFailuresTotal, m.leadsCaptured)
	return m
}

func (m *ChatMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveKnowledgeMatch(matched bool) {
	if m == nil {
		return
	}
	label := "false"
	if matched {
		label = "true"
	}
	m.knowledgeMatches.WithLabelValues(label).Inc()
}

func (m *ChatMetrics) ObserveCompletion(provider, status string, seconds float64) {
	if m == nil {
		return
	}
	m.completionLatency.WithLabelValues(provider, status).Observe(seconds)
}

func (m *ChatMetrics) ObserveFetchFailure(source string) {
	if m == nil {
		return
	}
	m.fetchFailuresTotal.WithLabelValues(source).Inc()
}

func (m *ChatMetrics) ObserveLeadCaptured(source string) {
	if m == nil {
		return
	}
	m.leadsCaptured.WithLabelValues(source).Inc()
}
