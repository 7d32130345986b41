package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestChatMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)

	m.ObserveTurn("ok")
	m.ObserveTurn("ok")
	m.ObserveTurn("fallback")
	m.ObserveKnowledgeMatch(true)
	m.ObserveFetchFailure("knowledge")
	m.ObserveLeadCaptured("chat")
	m.ObserveCompletion("openai", "ok", 0.4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.knowledgeMatches.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchFailuresTotal.WithLabelValues("knowledge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leadsCaptured.WithLabelValues("chat")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.completionLatency))
}

func TestChatMetricsNilSafe(t *testing.T) {
	var m *ChatMetrics
	m.ObserveTurn("ok")
	m.ObserveKnowledgeMatch(false)
	m.ObserveCompletion("openai", "error", 0.1)
	m.ObserveFetchFailure("config")
	m.ObserveLeadCaptured("web")
}
