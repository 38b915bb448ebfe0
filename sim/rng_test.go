package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSeededRNG_SameSeedProducesIdenticalStream(t *testing.T) {
	a := NewSeededRNG("urban-demo")
	b := NewSeededRNG("urban-demo")

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestNewSeededRNG_DifferentSeedsDiverge(t *testing.T) {
	a := NewSeededRNG("seed-a")
	b := NewSeededRNG("seed-b")

	same := true
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			same = false
		}
	}
	assert.False(t, same)
}

func TestRNG_Next_StaysWithinUnitInterval(t *testing.T) {
	r := NewSeededRNG("range-check")
	for i := 0; i < 1000; i++ {
		v := r.Next()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestRNG_Intn_StaysInBounds(t *testing.T) {
	r := NewSeededRNG("intn-check")
	for i := 0; i < 500; i++ {
		v := r.Intn(7)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 7)
	}
}

func TestRNG_Intn_PanicsOnNonPositiveN(t *testing.T) {
	r := NewSeededRNG("panic-check")
	assert.Panics(t, func() { r.Intn(0) })
	assert.Panics(t, func() { r.Intn(-1) })
}

func TestNewForkedRNG_LabelsProduceIndependentStreams(t *testing.T) {
	envRNG := NewForkedRNG("base-seed", "env")
	weatherRNG := NewForkedRNG("base-seed", "weather")

	assert.NotEqual(t, envRNG.Next(), weatherRNG.Next())
}

func TestNewForkedRNG_SameLabelIsDeterministic(t *testing.T) {
	a := NewForkedRNG("base-seed", "pf")
	b := NewForkedRNG("base-seed", "pf")
	assert.Equal(t, a.Next(), b.Next())
}

func TestForkSeed_ComposesWithPipe(t *testing.T) {
	assert.Equal(t, "base|env", ForkSeed("base", "env"))
}

func TestHashSeed_EmptyStringDiffersFromNonEmpty(t *testing.T) {
	assert.NotEqual(t, HashSeed(""), HashSeed("x"))
}
