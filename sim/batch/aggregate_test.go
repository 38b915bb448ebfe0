package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aware-eas/alertsim/sim"
)

func resultWithHitRate(v float64) sim.RunResult {
	return sim.RunResult{Metrics: sim.FinalMetrics{CacheHitRate: v}}
}

func TestAggregateMetrics_ComputesMeanAcrossReplicates(t *testing.T) {
	results := []sim.RunResult{resultWithHitRate(0.2), resultWithHitRate(0.4), resultWithHitRate(0.6)}
	agg := AggregateMetrics(results)
	assert.InDelta(t, 0.4, agg["cacheHitRate"].Mean, 1e-9)
}

func TestAggregateMetrics_SingleResultHasZeroStdDev(t *testing.T) {
	agg := AggregateMetrics([]sim.RunResult{resultWithHitRate(0.5)})
	assert.Equal(t, 0.0, agg["cacheHitRate"].StdDev)
}

func TestAggregateMetrics_CoversEveryFixedMetricKey(t *testing.T) {
	agg := AggregateMetrics([]sim.RunResult{resultWithHitRate(0.5)})
	for _, key := range metricKeys {
		_, ok := agg[key]
		assert.True(t, ok, "missing aggregate for %s", key)
	}
}
