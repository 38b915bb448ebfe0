package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTTLOnly_EvictsOldestInsertionOnOverflow(t *testing.T) {
	c := NewTTLOnly(2)
	c.Put(mkAlert("a", 0, 1000), 0)
	c.Put(mkAlert("b", 0, 1000), 0)

	// Accessing "a" must not protect it from FIFO eviction — TTLOnly is
	// insertion-order only, never recency-aware.
	_, _ = c.Get("a", 0)

	c.Put(mkAlert("c", 0, 1000), 0)

	assert.False(t, c.Has("a", 0))
	assert.True(t, c.Has("b", 0))
	assert.True(t, c.Has("c", 0))
}

func TestTTLOnly_UpdateInPlaceKeepsInsertionPosition(t *testing.T) {
	c := NewTTLOnly(2)
	c.Put(mkAlert("a", 0, 1000), 0)
	c.Put(mkAlert("b", 0, 1000), 0)
	c.Put(mkAlert("a", 1, 1000), 1)
	c.Put(mkAlert("c", 0, 1000), 0)

	// "a" was first in, so it is still the eviction candidate despite the update.
	assert.False(t, c.Has("a", 0))
	assert.True(t, c.Has("b", 0))
	assert.True(t, c.Has("c", 0))
}
