package batch

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aware-eas/alertsim/sim"
)

// stubRun returns a deterministic-looking RunResult derived only from
// the seed's length, without exercising the real
// engine — enough to exercise batch's own orchestration logic in
// isolation.
func stubRun(o sim.RunOptions) (sim.RunResult, error) {
	hitRate := float64(len(o.Seed)%10) / 10.0
	return sim.RunResult{
		Scenario: o.ScenarioName,
		Seed:     o.Seed,
		Metrics: sim.FinalMetrics{
			CacheHitRate: hitRate,
			DeliveryRate: 0.9,
		},
	}, nil
}

func failingRun(o sim.RunOptions) (sim.RunResult, error) {
	return sim.RunResult{}, &sim.ConfigurationError{Field: "stub", Reason: "always fails"}
}

func baseOpts() sim.RunOptions {
	o := sim.DefaultRunOptions()
	o.ScenarioName = "Urban"
	o.CacheSize = 64
	o.TargetAlertCount = 100
	o.BaselineReliability = 0.9
	o.HorizonSec = 300
	o.QueryRatePerMin = 30
	o.Seed = "batch-base"
	return o
}

func TestRunReplicated_RejectsNonPositiveReplicateCount(t *testing.T) {
	_, err := RunReplicated(baseOpts(), 0, SeedFixed, stubRun, nil)
	require.Error(t, err)
	var cfgErr *sim.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRunReplicated_DeterministicJitter_DerivesDistinctOrderedSeeds(t *testing.T) {
	result, err := RunReplicated(baseOpts(), 3, SeedDeterministicJitter, stubRun, nil)
	require.NoError(t, err)
	require.Len(t, result.Seeds, 3)
	assert.Equal(t, "batch-base#1", result.Seeds[0])
	assert.Equal(t, "batch-base#2", result.Seeds[1])
	assert.Equal(t, "batch-base#3", result.Seeds[2])
}

func TestRunReplicated_FixedMode_ReusesSameSeedEveryReplicate(t *testing.T) {
	result, err := RunReplicated(baseOpts(), 3, SeedFixed, stubRun, nil)
	require.NoError(t, err)
	for _, s := range result.Seeds {
		assert.Equal(t, "batch-base", s)
	}
}

func TestRunReplicated_SingleReplicateYieldsZeroStdDev(t *testing.T) {
	result, err := RunReplicated(baseOpts(), 1, SeedFixed, stubRun, nil)
	require.NoError(t, err)
	for _, agg := range result.Aggregate {
		assert.Equal(t, 0.0, agg.StdDev)
	}
}

func TestRunReplicated_PropagatesCellFailure(t *testing.T) {
	_, err := RunReplicated(baseOpts(), 2, SeedFixed, failingRun, nil)
	assert.Error(t, err)
}

func TestRunMultiPolicy_CoversAllFourPoliciesInCanonicalOrder(t *testing.T) {
	result, err := RunMultiPolicy(baseOpts(), stubRun, nil)
	require.NoError(t, err)
	require.Len(t, result.Cells, 4)
	assert.Equal(t, sim.PolicyNames(), policiesOf(result))
}

func policiesOf(mp MultiPolicyResult) []sim.PolicyName {
	out := make([]sim.PolicyName, len(mp.Cells))
	for i, c := range mp.Cells {
		out[i] = c.Policy
	}
	return out
}

func TestRunDeviceComparison_SweepsRequiredCacheSizes(t *testing.T) {
	result, err := RunDeviceComparison(baseOpts(), stubRun, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{32, 128, 256, 512, 1024}, result.CacheSizes)
	assert.Len(t, result.Cells, 5)
}

func TestRunNetworkComparison_SweepsRequiredReliabilities(t *testing.T) {
	result, err := RunNetworkComparison(baseOpts(), stubRun, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 0.95, 0.9, 0.85, 0.7, 0.6, 0.5, 0.3}, result.Reliabilities)
	assert.Len(t, result.Cells, 8)
}

func TestRunCombinedComparison_IsTheCartesianProductOfDeviceAndNetwork(t *testing.T) {
	result, err := RunCombinedComparison(baseOpts(), stubRun, nil)
	require.NoError(t, err)
	assert.Len(t, result.Cells, 5)
	for _, row := range result.Cells {
		assert.Len(t, row, 8)
	}
}

func TestRunReplicated_ObserverReceivesOneRunAndOneSinkRecordPerCell(t *testing.T) {
	reg := prometheus.NewRegistry()
	in := NewInstrumentation(reg)
	sink := NewMemorySink()
	obs := &Observer{Instrumentation: in, Sink: sink}

	result, err := RunReplicated(baseOpts(), 3, SeedFixed, stubRun, obs)
	require.NoError(t, err)
	require.Len(t, result.Seeds, 3)

	assert.Len(t, sink.All(), 3)

	families, gatherErr := reg.Gather()
	require.NoError(t, gatherErr)
	found := false
	for _, fam := range families {
		if fam.GetName() == "alertsim_runs_total" {
			found = true
			var total float64
			for _, m := range fam.Metric {
				total += m.GetCounter().GetValue()
			}
			assert.Equal(t, 3.0, total)
		}
	}
	assert.True(t, found, "alertsim_runs_total metric family not registered")
}

func TestRunMultiPolicy_ObserverCountsCellFailureAndSkipsSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	in := NewInstrumentation(reg)
	sink := NewMemorySink()
	obs := &Observer{Instrumentation: in, Sink: sink}

	_, err := RunMultiPolicy(baseOpts(), failingRun, obs)
	require.Error(t, err)
	assert.Empty(t, sink.All(), "a failing run must not produce a sink record")

	families, gatherErr := reg.Gather()
	require.NoError(t, gatherErr)
	found := false
	for _, fam := range families {
		if fam.GetName() == "alertsim_batch_cell_failures_total" {
			found = true
			assert.NotEmpty(t, fam.Metric)
		}
	}
	assert.True(t, found, "alertsim_batch_cell_failures_total metric family not registered")
}

func TestDeriveSeed_FixedModeIgnoresIndex(t *testing.T) {
	assert.Equal(t, "base", DeriveSeed("base", SeedFixed, 0))
	assert.Equal(t, "base", DeriveSeed("base", SeedFixed, 7))
}

func TestDeriveSeed_RandomizedModeProducesDistinctSeeds(t *testing.T) {
	a := DeriveSeed("base", SeedRandomized, 0)
	b := DeriveSeed("base", SeedRandomized, 0)
	assert.NotEqual(t, a, b)
}
