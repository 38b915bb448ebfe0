package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupScenario_KnownNamesSucceed(t *testing.T) {
	for _, name := range ScenarioNames() {
		s, err := LookupScenario(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name)
		assert.NotEmpty(t, s.Segments)
	}
}

func TestLookupScenario_UnknownNameFails(t *testing.T) {
	_, err := LookupScenario("Metropolis")
	require.Error(t, err)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestScenario_ActiveSegment_CoversEntireHorizonContiguously(t *testing.T) {
	s, err := LookupScenario("Urban")
	require.NoError(t, err)

	for _, probe := range []int64{0, 1, 179, 180, 419, 420, 899, 900, 10000} {
		seg := s.ActiveSegment(probe)
		assert.GreaterOrEqual(t, probe, seg.StartSec)
		assert.Less(t, probe, seg.EndSec)
	}
}

func TestScenario_ActiveSegment_FallsBackToFinalSegmentBeyondHorizon(t *testing.T) {
	s, err := LookupScenario("Rural")
	require.NoError(t, err)
	last := s.Segments[len(s.Segments)-1]
	assert.Equal(t, last, s.ActiveSegment(1_000_000))
}
