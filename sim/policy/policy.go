// Package policy implements the four cache replacement disciplines
// exercised by the simulation engine (spec §4.6): LRU, TTLOnly,
// PriorityFresh, and PAFTinyLFU.
package policy

import (
	"github.com/aware-eas/alertsim/sim"
)

// Policy is the shared contract every cache discipline implements. All
// implementations purge TTL-expired entries before any read or
// enumeration, per spec §4.6.
type Policy interface {
	Put(a sim.Alert, now int64)
	Get(id string, now int64) (sim.Alert, bool)
	Has(id string, now int64) bool
	Size() int
	Entries(now int64) []sim.Alert
}

// New constructs a Policy by name with the given capacity. Mirrors the
// teacher's NewAdmissionPolicy factory shape, but returns a
// ConfigurationError instead of panicking on an unknown name or
// non-positive capacity (spec §7: bad options fail fast, not via panic).
func New(name sim.PolicyName, capacity int) (Policy, error) {
	if capacity <= 0 {
		return nil, &sim.ConfigurationError{Field: "cacheSize", Reason: "must be positive"}
	}
	switch name {
	case sim.PolicyLRU:
		return NewLRU(capacity), nil
	case sim.PolicyTTLOnly:
		return NewTTLOnly(capacity), nil
	case sim.PolicyPriorityFresh:
		return NewPriorityFresh(capacity, DefaultScoreWeights(), nil), nil
	case sim.PolicyPAFTinyLFU:
		return NewPAFTinyLFU(capacity), nil
	default:
		return nil, &sim.ConfigurationError{
			Field:  "policy",
			Reason: "unknown policy name " + string(name),
		}
	}
}
