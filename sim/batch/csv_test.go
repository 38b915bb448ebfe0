package batch

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aware-eas/alertsim/sim"
)

func TestWriteTimelineCSV_WritesHeaderAndOneRowPerSample(t *testing.T) {
	var buf bytes.Buffer
	timeline := []sim.Sample{
		{T: 0, CacheSize: 10, Hits: 0, Misses: 0},
		{T: 1, CacheSize: 10, Hits: 3, Misses: 1},
	}
	require.NoError(t, WriteTimelineCSV(&buf, timeline))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"time", "cacheSize", "hits", "misses", "hitRate"}, rows[0])
	assert.Equal(t, "3", rows[2][2])
	assert.Equal(t, "0.75", rows[2][4])
}

func TestWriteMultiPolicyCSV_WritesOneRowPerPolicy(t *testing.T) {
	var buf bytes.Buffer
	mp := MultiPolicyResult{
		Seed: "seed-1",
		Base: sim.RunOptions{ScenarioName: "Urban", CacheSize: 64, TargetAlertCount: 100, BaselineReliability: 0.9, HorizonSec: 600, QueryRatePerMin: 30},
		Cells: []PolicyRunResult{
			{Policy: sim.PolicyLRU, Result: sim.RunResult{Metrics: sim.FinalMetrics{CacheHitRate: 0.5}}},
			{Policy: sim.PolicyPriorityFresh, Result: sim.RunResult{Metrics: sim.FinalMetrics{CacheHitRate: 0.7}}},
		},
	}
	require.NoError(t, WriteMultiPolicyCSV(&buf, mp))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "LRU", rows[1][0])
	assert.Equal(t, "PriorityFresh", rows[2][0])
}

func TestWriteDeviceCSV_PrependsDeviceColumn(t *testing.T) {
	var buf bytes.Buffer
	d := DeviceResult{
		CacheSizes: []int{32, 128},
		Cells: []MultiPolicyResult{
			{Seed: "s", Base: sim.RunOptions{ScenarioName: "Urban"}, Cells: []PolicyRunResult{{Policy: sim.PolicyLRU, Result: sim.RunResult{}}}},
			{Seed: "s", Base: sim.RunOptions{ScenarioName: "Urban"}, Cells: []PolicyRunResult{{Policy: sim.PolicyLRU, Result: sim.RunResult{}}}},
		},
	}
	require.NoError(t, WriteDeviceCSV(&buf, d))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "device", rows[0][0])
	assert.Equal(t, "32", rows[1][0])
	assert.Equal(t, "128", rows[2][0])
}
