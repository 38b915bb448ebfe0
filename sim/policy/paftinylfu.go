package policy

import "github.com/aware-eas/alertsim/sim"

// tinyLFUSampleSize bounds how many of the oldest insertion entries are
// examined as eviction candidates on overflow (spec §4.6).
const tinyLFUSampleSize = 8

// sketchKey is the frequency-sketch key for an alert: its thread key
// when set (so successive updates of the same alert accumulate one
// frequency signal), falling back to its own id.
func sketchKey(a sim.Alert) string {
	if a.ThreadKey != "" {
		return a.ThreadKey
	}
	return a.ID
}

// PAFTinyLFU is a priority-and-frequency-aware admission cache: a
// count-min sketch estimates access frequency, and an incoming alert is
// only admitted over the least-frequently-used of a small sample of the
// oldest entries if it is at least as frequent (spec §4.6).
type PAFTinyLFU struct {
	capacity int
	sketch   *sim.FrequencySketch
	queue    []string // insertion/promotion order, oldest first
	entries  map[string]sim.Alert
}

// NewPAFTinyLFU constructs a PAFTinyLFU cache bounded at capacity
// entries, sized proportionally to capacity per spec §4.4 sketch sizing.
func NewPAFTinyLFU(capacity int) *PAFTinyLFU {
	width := capacity * 8
	if width < 64 {
		width = 64
	}
	return &PAFTinyLFU{
		capacity: capacity,
		sketch:   sim.NewFrequencySketch(4, width, capacity*10),
		entries:  make(map[string]sim.Alert),
	}
}

func (c *PAFTinyLFU) purgeExpired(now int64) {
	if len(c.queue) == 0 {
		return
	}
	kept := c.queue[:0]
	for _, id := range c.queue {
		a, ok := c.entries[id]
		if !ok {
			continue
		}
		if a.Expired(now) {
			delete(c.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	c.queue = kept
}

func (c *PAFTinyLFU) promote(id string) {
	for i, qid := range c.queue {
		if qid == id {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			break
		}
	}
	c.queue = append(c.queue, id)
}

// Put records a frequency sample for the alert and either updates an
// existing entry in place, inserts directly if there is room, or runs
// the sample-and-compare admission check on overflow.
func (c *PAFTinyLFU) Put(a sim.Alert, now int64) {
	c.purgeExpired(now)
	c.sketch.Increment(sketchKey(a))

	if _, exists := c.entries[a.ID]; exists {
		c.entries[a.ID] = a
		c.promote(a.ID)
		return
	}

	if len(c.entries) < c.capacity {
		c.entries[a.ID] = a
		c.queue = append(c.queue, a.ID)
		return
	}

	sampleN := tinyLFUSampleSize
	if sampleN > len(c.queue) {
		sampleN = len(c.queue)
	}
	victimIdx := -1
	var victimFreq uint8
	for i := 0; i < sampleN; i++ {
		id := c.queue[i]
		alert, ok := c.entries[id]
		if !ok {
			continue
		}
		f := c.sketch.Estimate(sketchKey(alert))
		if victimIdx == -1 || f < victimFreq {
			victimIdx, victimFreq = i, f
		}
	}
	if victimIdx == -1 {
		return
	}

	candidateFreq := c.sketch.Estimate(sketchKey(a))
	if candidateFreq < victimFreq {
		return // admission rejected: candidate is colder than the sampled victim
	}

	victimID := c.queue[victimIdx]
	delete(c.entries, victimID)
	c.queue = append(c.queue[:victimIdx], c.queue[victimIdx+1:]...)

	c.entries[a.ID] = a
	c.queue = append(c.queue, a.ID)
}

// Get returns the alert if present and not expired, recording an
// additional frequency sample and promoting it to most-recent.
func (c *PAFTinyLFU) Get(id string, now int64) (sim.Alert, bool) {
	c.purgeExpired(now)
	a, ok := c.entries[id]
	if !ok {
		return sim.Alert{}, false
	}
	c.sketch.Increment(sketchKey(a))
	c.promote(id)
	return a, true
}

// Has reports presence without sampling frequency or promoting.
func (c *PAFTinyLFU) Has(id string, now int64) bool {
	c.purgeExpired(now)
	_, ok := c.entries[id]
	return ok
}

// Size returns current occupancy (spec §4.6: no `now`, so no purge).
func (c *PAFTinyLFU) Size() int {
	return len(c.entries)
}

// Entries returns all non-expired alerts in queue order.
func (c *PAFTinyLFU) Entries(now int64) []sim.Alert {
	c.purgeExpired(now)
	out := make([]sim.Alert, 0, len(c.queue))
	for _, id := range c.queue {
		out = append(out, c.entries[id])
	}
	return out
}
