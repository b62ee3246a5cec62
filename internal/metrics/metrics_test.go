package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/edgard/wonderfulgo/internal/metrics"
)

func TestMetrics_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := metrics.New(reg)

	m.Started("chat")
	m.Finished("chat", metrics.OutcomeSuccess, 150*time.Millisecond)
	m.Started("plan")
	m.Finished("plan", "THROTTLED", time.Second)
	m.Rejected("plan")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exchanges().WithLabelValues("chat", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exchanges().WithLabelValues("plan", "THROTTLED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exchanges().WithLabelValues("plan", metrics.OutcomeRejected)))

	count, err := testutil.GatherAndCount(reg, "wonderfulgo_assistant_in_flight")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Started("chat")
		m.Finished("chat", metrics.OutcomeSuccess, time.Second)
		m.Rejected("chat")
	})
}
