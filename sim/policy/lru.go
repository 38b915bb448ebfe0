package policy

import (
	"container/list"

	"github.com/aware-eas/alertsim/sim"
)

// LRU is a bounded-capacity recency cache: put evicts the least recently
// used entry on overflow, get promotes the accessed entry to
// most-recently-used (spec §4.6).
type LRU struct {
	capacity int
	order    *list.List // front = most recently used
	index    map[string]*list.Element
}

type lruNode struct {
	alert sim.Alert
}

// NewLRU constructs an LRU cache bounded at capacity entries.
func NewLRU(capacity int) *LRU {
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *LRU) purgeExpired(now int64) {
	for id, el := range c.index {
		if el.Value.(*lruNode).alert.Expired(now) {
			c.order.Remove(el)
			delete(c.index, id)
		}
	}
}

// Put inserts or updates an alert, evicting the least recently used
// entry if the cache is at capacity.
func (c *LRU) Put(a sim.Alert, now int64) {
	c.purgeExpired(now)

	if el, ok := c.index[a.ID]; ok {
		el.Value.(*lruNode).alert = a
		c.order.MoveToFront(el)
		return
	}

	if len(c.index) >= c.capacity {
		back := c.order.Back()
		if back != nil {
			evictedID := back.Value.(*lruNode).alert.ID
			c.order.Remove(back)
			delete(c.index, evictedID)
		}
	}

	el := c.order.PushFront(&lruNode{alert: a})
	c.index[a.ID] = el
}

// Get returns the alert and promotes it to most-recently-used. Returns
// false for an absent or expired id (expired entries are removed).
func (c *LRU) Get(id string, now int64) (sim.Alert, bool) {
	c.purgeExpired(now)
	el, ok := c.index[id]
	if !ok {
		return sim.Alert{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruNode).alert, true
}

// Has reports presence without affecting recency.
func (c *LRU) Has(id string, now int64) bool {
	c.purgeExpired(now)
	_, ok := c.index[id]
	return ok
}

// Size returns the current occupancy. Per spec §4.6 size() takes no
// `now` and so does not purge; callers that need an exact non-expired
// count should use len(Entries(now)).
func (c *LRU) Size() int {
	return len(c.index)
}

// Entries returns all non-expired alerts currently cached.
func (c *LRU) Entries(now int64) []sim.Alert {
	c.purgeExpired(now)
	out := make([]sim.Alert, 0, len(c.index))
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*lruNode).alert)
	}
	return out
}
