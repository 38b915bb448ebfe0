package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrequencySketch_EstimateGrowsWithIncrements(t *testing.T) {
	fs := NewFrequencySketch(4, 64, 1000)

	assert.EqualValues(t, 0, fs.Estimate("alert-1"))
	fs.Increment("alert-1")
	first := fs.Estimate("alert-1")
	assert.GreaterOrEqual(t, first, uint8(1))

	fs.Increment("alert-1")
	second := fs.Estimate("alert-1")
	assert.GreaterOrEqual(t, second, first)
}

func TestFrequencySketch_SaturatesAtCeiling(t *testing.T) {
	fs := NewFrequencySketch(4, 64, 100000)
	for i := 0; i < 100; i++ {
		fs.Increment("hot-key")
	}
	assert.LessOrEqual(t, fs.Estimate("hot-key"), uint8(defaultSketchCeiling))
}

func TestFrequencySketch_AgingHalvesCounters(t *testing.T) {
	fs := NewFrequencySketch(4, 64, 10)
	for i := 0; i < 9; i++ {
		fs.Increment("key")
	}
	before := fs.Estimate("key")
	assert.GreaterOrEqual(t, before, uint8(1))

	// The tenth increment crosses sampleSize and triggers aging.
	fs.Increment("key")
	after := fs.Estimate("key")
	assert.LessOrEqual(t, after, before)
}

func TestFrequencySketch_DistinctKeysDoNotAlwaysCollide(t *testing.T) {
	fs := NewFrequencySketch(4, 1024, 1000)
	fs.Increment("alpha")
	assert.EqualValues(t, 0, fs.Estimate("beta"))
}

func TestNextPow2_RoundsUp(t *testing.T) {
	assert.EqualValues(t, 1, nextPow2(0))
	assert.EqualValues(t, 1, nextPow2(1))
	assert.EqualValues(t, 64, nextPow2(64))
	assert.EqualValues(t, 128, nextPow2(65))
}
