package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aware-eas/alertsim/sim"
)

func baseOptions(scenario string, policyName sim.PolicyName) sim.RunOptions {
	o := sim.DefaultRunOptions()
	o.ScenarioName = scenario
	o.Policy = policyName
	o.CacheSize = 64
	o.TargetAlertCount = 300
	o.BaselineReliability = 0.85
	o.HorizonSec = 600
	o.QueryRatePerMin = 45
	o.Seed = "engine-test"
	return o
}

func TestRunSimulation_RejectsInvalidOptionsWithoutRunning(t *testing.T) {
	o := baseOptions("Urban", sim.PolicyLRU)
	o.Seed = ""
	_, err := RunSimulation(o)
	require.Error(t, err)
	var cfgErr *sim.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRunSimulation_UrbanPriorityFresh_IsDeterministicGivenSameSeed(t *testing.T) {
	o := baseOptions("Urban", sim.PolicyPriorityFresh)

	a, err := RunSimulation(o)
	require.NoError(t, err)
	b, err := RunSimulation(o)
	require.NoError(t, err)

	assert.Equal(t, a.Metrics, b.Metrics)
	assert.Equal(t, a.Timeline, b.Timeline)
	assert.Equal(t, len(a.IssuedAlerts), len(b.IssuedAlerts))
}

func TestRunSimulation_RuralLRU_CapacityDeliveredAndDroppedAccountForEveryIssuedAlert(t *testing.T) {
	o := baseOptions("Rural", sim.PolicyLRU)
	o.CacheSize = 32

	result, err := RunSimulation(o)
	require.NoError(t, err)

	for _, sample := range result.Timeline {
		assert.LessOrEqual(t, sample.CacheSize, o.CacheSize)
	}

	delivered, dropped := 0, 0
	for _, rs := range result.RegionStats {
		delivered += rs.Delivered
		dropped += rs.Dropped
	}
	assert.Equal(t, delivered, len(result.DeliveredAlerts))
	assert.Equal(t, delivered+dropped, len(result.IssuedAlerts))
}

func TestRunSimulation_SuburbanPAFTinyLFU_NeverExceedsCacheCapacity(t *testing.T) {
	o := baseOptions("Suburban", sim.PolicyPAFTinyLFU)
	o.CacheSize = 20

	result, err := RunSimulation(o)
	require.NoError(t, err)

	for _, sample := range result.Timeline {
		assert.LessOrEqual(t, sample.CacheSize, o.CacheSize)
	}
}

func TestRunSimulation_MetricsStayWithinDocumentedBounds(t *testing.T) {
	o := baseOptions("Urban", sim.PolicyPriorityFresh)
	o.Push.RateLimitPerMin = 10
	o.Push.DedupWindowSec = 120
	o.Push.Threshold = 0.8

	result, err := RunSimulation(o)
	require.NoError(t, err)

	m := result.Metrics
	for _, v := range []float64{
		m.CacheHitRate, m.DeliveryRate, m.AvgFreshness, m.StaleAccessRate,
		m.RedundancyIndex, m.ActionabilityFirstRatio, m.TimelinessConsistency,
		m.PushSuppressRate, m.PushDuplicateRate, m.PushTimelyFirstRatio,
	} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.GreaterOrEqual(t, m.PushesSent, 0)
}

func TestRunSimulation_WithPFModel_AttachesResumablePFState(t *testing.T) {
	o := baseOptions("Urban", sim.PolicyPriorityFresh)
	o.PF.UsePF = true

	result, err := RunSimulation(o)
	require.NoError(t, err)
	require.NotNil(t, result.PFState)
	assert.Equal(t, result.PFState.FeatureCount, len(result.PFState.Weights))
}

func TestRunSimulation_WithoutPFModel_PFStateIsNil(t *testing.T) {
	o := baseOptions("Urban", sim.PolicyLRU)
	result, err := RunSimulation(o)
	require.NoError(t, err)
	assert.Nil(t, result.PFState)
}

func TestRunSimulation_DifferentPoliciesOnSameSeedProduceSameIssuedAlertStream(t *testing.T) {
	base := baseOptions("Urban", sim.PolicyLRU)
	lru, err := RunSimulation(base)
	require.NoError(t, err)

	ttl := base
	ttl.Policy = sim.PolicyTTLOnly
	ttlResult, err := RunSimulation(ttl)
	require.NoError(t, err)

	// Alert synthesis depends only on the seed/scenario, never on which
	// cache policy consumes the stream.
	assert.Equal(t, len(lru.IssuedAlerts), len(ttlResult.IssuedAlerts))
	for i := range lru.IssuedAlerts {
		assert.Equal(t, lru.IssuedAlerts[i].ID, ttlResult.IssuedAlerts[i].ID)
	}
}

func TestRunSimulation_TimelineCountersAreMonotonicallyNonDecreasing(t *testing.T) {
	o := baseOptions("Urban", sim.PolicyPriorityFresh)
	result, err := RunSimulation(o)
	require.NoError(t, err)

	for i := 1; i < len(result.Timeline); i++ {
		assert.GreaterOrEqual(t, result.Timeline[i].Hits, result.Timeline[i-1].Hits)
		assert.GreaterOrEqual(t, result.Timeline[i].Misses, result.Timeline[i-1].Misses)
	}
}
