package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPAFTinyLFU_AdmitsFrequentCandidateOverColdVictim(t *testing.T) {
	c := NewPAFTinyLFU(2)

	hot := mkAlert("hot", 0, 10000)
	cold := mkAlert("cold", 0, 10000)
	c.Put(hot, 0)
	c.Put(cold, 0)

	// Drive "hot"'s frequency estimate well above "cold"'s via repeated
	// accesses before the admission decision is made.
	for i := 0; i < 5; i++ {
		_, _ = c.Get("hot", 0)
	}

	candidate := mkAlert("candidate", 0, 10000)
	for i := 0; i < 5; i++ {
		c.sketch.Increment(sketchKey(candidate))
	}

	c.Put(candidate, 0)

	assert.True(t, c.Has("hot", 0), "frequently accessed entry should not be sampled as victim ahead of a cold one")
	assert.True(t, c.Has("candidate", 0), "a candidate at least as frequent as the sampled victim is admitted")
}

func TestPAFTinyLFU_RejectsColdCandidateAgainstHotVictim(t *testing.T) {
	c := NewPAFTinyLFU(1)

	hot := mkAlert("hot", 0, 10000)
	c.Put(hot, 0)
	for i := 0; i < 10; i++ {
		_, _ = c.Get("hot", 0)
	}

	cold := mkAlert("cold", 0, 10000)
	c.Put(cold, 0)

	assert.True(t, c.Has("hot", 0), "a colder candidate must not evict a much more frequent sole entry")
	assert.False(t, c.Has("cold", 0))
}

func TestPAFTinyLFU_DirectInsertUnderCapacity(t *testing.T) {
	c := NewPAFTinyLFU(4)
	c.Put(mkAlert("a", 0, 1000), 0)
	require.Equal(t, 1, c.Size())
}

func TestSketchKey_PrefersThreadKeyOverID(t *testing.T) {
	a := mkAlert("id-1", 0, 1000)
	a.ThreadKey = "thread-1"
	assert.Equal(t, "thread-1", sketchKey(a))

	b := mkAlert("id-2", 0, 1000)
	assert.Equal(t, "id-2", sketchKey(b))
}
