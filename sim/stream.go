package sim

import (
	"fmt"
	"math"
)

var eventTypeBaseSize = map[EventType]int{
	EventTypeFlood:   1800,
	EventTypeShelter: 1200,
	EventTypeOther:   900,
}

// threadRegistry tracks, per (event_type, region_id) base key, the
// currently "open" thread key and each thread's running update counter.
// Mirrors the original system's separation of immutable alert data from
// mutable stream-synthesis bookkeeping (spec §3).
type threadRegistry struct {
	current map[string]string
	updates map[string]int
}

func newThreadRegistry() *threadRegistry {
	return &threadRegistry{current: map[string]string{}, updates: map[string]int{}}
}

// next resolves the thread key and update number for a newly synthesized
// alert on the given base key, per spec §4.5's thread/update model.
func (t *threadRegistry) next(rng *RNG, base string) (threadKey string, updateNo int) {
	existing, ok := t.current[base]
	if !ok {
		t.current[base] = base
		t.updates[base] = 1
		return base, 1
	}

	if rng.Next() < 0.3 {
		// Update to the existing open thread.
		t.updates[existing]++
		return existing, t.updates[existing]
	}

	if rng.Next() < 0.4 {
		salt := int(rng.Next() * 1000)
		fresh := fmt.Sprintf("%s:%d", base, salt)
		t.current[base] = fresh
		t.updates[fresh] = 1
		return fresh, 1
	}

	t.updates[existing]++
	return existing, t.updates[existing]
}

// GenerateAlertStream synthesizes a finite ordered sequence of alerts
// over the run horizon, terminating when the horizon is reached or
// targetCount alerts have been produced (spec §4.5).
func GenerateAlertStream(rng *RNG, env *Environment, scenario Scenario, targetCount int, horizonSec int64) []Alert {
	alerts := make([]Alert, 0, targetCount)
	threads := newThreadRegistry()

	var t int64
	idCounter := 0

	for t < horizonSec && len(alerts) < targetCount {
		activeSeg := scenario.ActiveSegment(t)
		ratePerMin := scenario.BaseAlertRatePerMin * activeSeg.AlertRateMul
		ratePerSec := ratePerMin / 60.0
		if ratePerSec <= 0 {
			break
		}
		meanGap := 1.0 / ratePerSec
		gap := int64(math.Round(ExponentialSample(rng, meanGap)))
		if gap < 1 {
			gap = 1
		}
		t += gap
		if t >= horizonSec {
			break
		}

		region := env.Regions[rng.Intn(len(env.Regions))]

		ttl := int64(math.Round(NormalSample(rng, float64(scenario.MeanTTLSec), float64(scenario.MeanTTLSec)*0.25)))
		if ttl < 120 {
			ttl = 120
		}

		severity := drawAlertSeverity(rng, region)
		urgency := drawUrgency(rng)
		eventType := drawEventType(rng)

		base := fmt.Sprintf("%s:%s", eventType, region.ID)
		threadKey, updateNo := threads.next(rng, base)

		size := float64(eventTypeBaseSize[eventType])
		switch severity {
		case SeverityExtreme:
			size *= 1.3
		case SeveritySevere:
			size *= 1.15
		}

		idCounter++
		alerts = append(alerts, Alert{
			ID:        fmt.Sprintf("alert-%06d", idCounter),
			EventType: eventType,
			Severity:  severity,
			Urgency:   urgency,
			IssuedAt:  t,
			TTLSec:    ttl,
			RegionID:  region.ID,
			SizeBytes: int(math.Round(size)),
			ThreadKey: threadKey,
			UpdateNo:  updateNo,
		})
	}

	return alerts
}

func drawAlertSeverity(rng *RNG, region Region) Severity {
	bias := regionSeverityBias(region.Severity)
	u := rng.Next()
	pUnknown := 0.05
	pExtreme := 0.20 + bias
	pSevere := 0.35 + 0.5*bias
	pModerate := 0.30

	switch {
	case u < pUnknown:
		return SeverityUnknown
	case u < pUnknown+pExtreme:
		return SeverityExtreme
	case u < pUnknown+pExtreme+pSevere:
		return SeveritySevere
	case u < pUnknown+pExtreme+pSevere+pModerate:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

func drawUrgency(rng *RNG) Urgency {
	u := rng.Next()
	switch {
	case u < 0.45:
		return UrgencyImmediate
	case u < 0.85:
		return UrgencyExpected
	case u < 0.95:
		return UrgencyFuture
	case u < 0.98:
		return UrgencyPast
	default:
		return UrgencyUnknown
	}
}

func drawEventType(rng *RNG) EventType {
	u := rng.Next()
	switch {
	case u < 0.70:
		return EventTypeFlood
	case u < 0.85:
		return EventTypeShelter
	default:
		return EventTypeOther
	}
}
