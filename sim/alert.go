package sim

import "math"

// Severity is the alert's CAP-style severity class.
type Severity string

const (
	SeverityMinor    Severity = "Minor"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
	SeverityExtreme  Severity = "Extreme"
	SeverityUnknown  Severity = "Unknown"
)

// Urgency is the alert's CAP-style urgency class.
type Urgency string

const (
	UrgencyImmediate Urgency = "Immediate"
	UrgencyExpected  Urgency = "Expected"
	UrgencyFuture    Urgency = "Future"
	UrgencyPast      Urgency = "Past"
	UrgencyUnknown   Urgency = "Unknown"
)

// EventType is the open-set category of what triggered the alert.
type EventType string

const (
	EventTypeFlood   EventType = "Flood"
	EventTypeShelter EventType = "Shelter"
	EventTypeOther   EventType = "Other"
)

// Alert is the fundamental unit flowing through the simulator: a
// time-bounded emergency notification scoped to a region and grouped
// into an update thread. Alerts are immutable once synthesized — the
// engine tracks mutable delivery/retrieval/push bookkeeping separately
// (see threadState in engine.go), never on the Alert itself.
type Alert struct {
	ID          string
	EventType   EventType
	Severity    Severity
	Urgency     Urgency
	IssuedAt    int64 // seconds since t=0
	TTLSec      int64
	Headline    string
	Instruction string
	Sender      string
	RegionID    string
	SizeBytes   int
	ThreadKey   string
	UpdateNo    int
}

// Expired reports whether the alert is expired at wall time t.
func (a *Alert) Expired(t int64) bool {
	return t >= a.IssuedAt+a.TTLSec
}

// Freshness returns exp(-age/ttl) for non-expired alerts, 0 afterward.
func (a *Alert) Freshness(t int64) float64 {
	if a.Expired(t) {
		return 0
	}
	age := t - a.IssuedAt
	if age < 0 {
		age = 0
	}
	return math.Exp(-float64(age) / float64(a.TTLSec))
}

// SevWeight maps a severity class to its PriorityFresh/query-sampling
// weight (spec §4.6).
func SevWeight(s Severity) float64 {
	switch s {
	case SeverityExtreme:
		return 4
	case SeveritySevere:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 2
	}
}

// UrgWeight maps an urgency class to its PriorityFresh/query-sampling
// weight (spec §4.6).
func UrgWeight(u Urgency) float64 {
	switch u {
	case UrgencyImmediate:
		return 3
	case UrgencyExpected:
		return 2
	case UrgencyFuture:
		return 1.5
	case UrgencyPast:
		return 0.5
	default:
		return 1.5
	}
}
