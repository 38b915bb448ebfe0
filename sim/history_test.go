package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWeatherHistory_OneRecordPerRegionAllInRange(t *testing.T) {
	env := mustEnv(t, "weather-range", 10)
	wx := GenerateWeatherHistory("weather-range", env)

	require.Len(t, wx, len(env.Regions))
	for _, r := range env.Regions {
		rec, ok := wx[r.ID]
		require.True(t, ok)
		assert.GreaterOrEqual(t, rec.FloodFrequency, 0.0)
		assert.LessOrEqual(t, rec.FloodFrequency, 1.0)
		assert.GreaterOrEqual(t, rec.DrainageScore, 0.0)
		assert.LessOrEqual(t, rec.DrainageScore, 1.0)
	}
}

func TestGenerateAnomalyHistory_DeterministicGivenSameSeed(t *testing.T) {
	env := mustEnv(t, "anomaly-det", 6)
	a := GenerateAnomalyHistory("anomaly-det", env)
	b := GenerateAnomalyHistory("anomaly-det", env)
	assert.Equal(t, a, b)
}

func TestGenerateAnomalyHistory_RatesStayInUnitInterval(t *testing.T) {
	env := mustEnv(t, "anomaly-range", 8)
	anomaly := GenerateAnomalyHistory("anomaly-range", env)

	for _, rec := range anomaly {
		assert.GreaterOrEqual(t, rec.FalseAlarmRate, 0.0)
		assert.LessOrEqual(t, rec.FalseAlarmRate, 1.0)
		assert.GreaterOrEqual(t, rec.HistoricalAccuracy, 0.0)
		assert.LessOrEqual(t, rec.HistoricalAccuracy, 1.0)
		assert.GreaterOrEqual(t, rec.TypicalLeadTimeSec, 60.0)
		assert.LessOrEqual(t, rec.TypicalLeadTimeSec, 7200.0)
	}
}
