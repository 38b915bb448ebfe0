package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsedOnOverflow(t *testing.T) {
	c := NewLRU(2)
	c.Put(mkAlert("a", 0, 1000), 0)
	c.Put(mkAlert("b", 0, 1000), 0)

	// Touch "a" so "b" becomes the least recently used.
	_, ok := c.Get("a", 0)
	require.True(t, ok)

	c.Put(mkAlert("c", 0, 1000), 0)

	assert.True(t, c.Has("a", 0))
	assert.True(t, c.Has("c", 0))
	assert.False(t, c.Has("b", 0))
}

func TestLRU_PutExistingIDUpdatesWithoutEviction(t *testing.T) {
	c := NewLRU(1)
	c.Put(mkAlert("a", 0, 1000), 0)
	c.Put(mkAlert("a", 5, 1000), 5)

	assert.Equal(t, 1, c.Size())
	got, ok := c.Get("a", 5)
	require.True(t, ok)
	assert.Equal(t, int64(5), got.IssuedAt)
}
