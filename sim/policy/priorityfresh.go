package policy

import (
	"math"
	"sort"

	"github.com/aware-eas/alertsim/sim"
	"github.com/aware-eas/alertsim/sim/pf"
)

// ScoreWeights are the PriorityFresh eviction-score coefficients (spec
// §4.6 defaults: w_S=2, w_U=3, w_F=4).
type ScoreWeights struct {
	Severity  float64
	Urgency   float64
	Freshness float64
}

// DefaultScoreWeights returns the spec-mandated default weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Severity: 2, Urgency: 3, Freshness: 4}
}

// scoreFreshnessLambda is the decay constant for PriorityFresh's own
// freshness term (spec §4.6) — distinct from Alert.Freshness, which
// decays relative to TTL rather than on a fixed half-life.
const scoreFreshnessLambda = 1.0 / 600.0

func scoreFreshness(a sim.Alert, now int64) float64 {
	return math.Exp(-scoreFreshnessLambda * float64(now-a.IssuedAt))
}

type pfEntry struct {
	alert sim.Alert
	seq   int
}

// PriorityFresh evicts the lowest-scoring entry on overflow, where score
// combines severity, urgency, and freshness weights, plus an optional PF
// model boost (spec §4.6).
type PriorityFresh struct {
	capacity int
	weights  ScoreWeights
	pfModel  *pf.Model
	regions  map[string]sim.Region
	weather  map[string]sim.WeatherRecord
	anomaly  map[string]sim.AnomalyRecord

	entries    map[string]*pfEntry
	seqCounter int
}

// NewPriorityFresh constructs a PriorityFresh cache. pfModel may be nil,
// in which case pf_boost is always 0; the per-region context the model's
// feature extractor reads is left unset (NewPriorityFreshWithPF sets it).
func NewPriorityFresh(capacity int, weights ScoreWeights, pfModel *pf.Model) *PriorityFresh {
	return &PriorityFresh{
		capacity: capacity,
		weights:  weights,
		pfModel:  pfModel,
		entries:  make(map[string]*pfEntry),
	}
}

// NewPriorityFreshWithPF constructs a PriorityFresh cache with a PF
// model attached; regions/weather/anomaly provide the per-region context
// the model's feature extractor needs (spec §4.7).
func NewPriorityFreshWithPF(capacity int, weights ScoreWeights, pfModel *pf.Model,
	regions map[string]sim.Region, weather map[string]sim.WeatherRecord, anomaly map[string]sim.AnomalyRecord) *PriorityFresh {
	p := NewPriorityFresh(capacity, weights, pfModel)
	p.regions = regions
	p.weather = weather
	p.anomaly = anomaly
	return p
}

func (c *PriorityFresh) purgeExpired(now int64) {
	for id, e := range c.entries {
		if e.alert.Expired(now) {
			delete(c.entries, id)
		}
	}
}

// score computes the eviction score for alert a at time now, including
// the PF boost when a model is attached.
func (c *PriorityFresh) score(a sim.Alert, now int64) float64 {
	s := c.weights.Severity*sim.SevWeight(a.Severity) +
		c.weights.Urgency*sim.UrgWeight(a.Urgency) +
		c.weights.Freshness*scoreFreshness(a, now)

	if c.pfModel != nil {
		ctx := pf.Context{
			Alert:   &a,
			Now:     now,
			Region:  c.regions[a.RegionID],
			Weather: c.weather[a.RegionID],
			Anomaly: c.anomaly[a.RegionID],
		}
		detail := c.pfModel.Score(ctx, false)
		s += detail.Boost
	}
	return s
}

// Score exposes the computed eviction score for external inspection
// (e.g. tests asserting the "never evicts a higher-scoring entry in
// favor of a lower-scoring one" invariant).
func (c *PriorityFresh) Score(a sim.Alert, now int64) float64 {
	return c.score(a, now)
}

// Put inserts or updates an alert, evicting the lowest-scoring entry on
// overflow. Ties are broken deterministically: the earlier-inserted
// entry (lower sequence number) survives.
func (c *PriorityFresh) Put(a sim.Alert, now int64) {
	c.purgeExpired(now)

	if e, exists := c.entries[a.ID]; exists {
		e.alert = a
		return
	}

	if len(c.entries) >= c.capacity {
		var victimID string
		var victimScore float64
		var victimSeq int
		first := true
		for id, e := range c.entries {
			s := c.score(e.alert, now)
			if first || s < victimScore || (s == victimScore && e.seq > victimSeq) {
				victimID, victimScore, victimSeq = id, s, e.seq
				first = false
			}
		}
		if !first {
			delete(c.entries, victimID)
		}
	}

	c.seqCounter++
	c.entries[a.ID] = &pfEntry{alert: a, seq: c.seqCounter}
}

// Get returns the alert if present and not expired.
func (c *PriorityFresh) Get(id string, now int64) (sim.Alert, bool) {
	c.purgeExpired(now)
	e, ok := c.entries[id]
	if !ok {
		return sim.Alert{}, false
	}
	return e.alert, true
}

// Has reports presence; like Get, it purges expired entries first.
func (c *PriorityFresh) Has(id string, now int64) bool {
	_, ok := c.Get(id, now)
	return ok
}

// Size returns current occupancy (spec §4.6: no `now`, so no purge).
func (c *PriorityFresh) Size() int {
	return len(c.entries)
}

// Entries returns all non-expired alerts currently cached, ordered by
// insertion sequence. Go's map iteration order is randomized per
// process, so ranging over c.entries directly would make every
// consumer of this slice (weighted query selection, foremost) a source
// of nondeterminism across otherwise identical runs; sorting by seq
// keeps this policy's output order as reproducible as the other three
// policies' list/queue-backed Entries.
func (c *PriorityFresh) Entries(now int64) []sim.Alert {
	c.purgeExpired(now)
	entries := make([]*pfEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]sim.Alert, len(entries))
	for i, e := range entries {
		out[i] = e.alert
	}
	return out
}
