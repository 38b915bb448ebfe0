package sim

import "math"

// Segment is a half-open [Start, End) window of simulated time carrying
// a reliability multiplier and optional alert/query rate multipliers.
type Segment struct {
	StartSec     int64
	EndSec       int64 // math.MaxInt64 sentinel for "to the end of the horizon"
	Reliability  float64
	AlertRateMul float64 // 1.0 if unset
	QueryRateMul float64 // 1.0 if unset
}

// Scenario bundles the base alert rate, mean TTL, SLA target, region
// count, and temporal segments for one named traffic pattern (spec §6.3).
type Scenario struct {
	Name                   string
	BaseAlertRatePerMin    float64
	MeanTTLSec             int64
	TargetFirstDeliverySec int64
	RegionCount            int
	Segments               []Segment
}

// ActiveSegment returns the segment covering time t. Segments are
// ordered and their ranges are contiguous and exhaustive by
// construction (this file's catalogue always ends with a segment
// whose EndSec is unbounded).
func (s Scenario) ActiveSegment(t int64) Segment {
	for _, seg := range s.Segments {
		if t >= seg.StartSec && t < seg.EndSec {
			return seg
		}
	}
	return s.Segments[len(s.Segments)-1]
}

const (
	DefaultPlaneWidth  = 960.0
	DefaultPlaneHeight = 540.0
)

func seg(start, end int64, reliability float64, mul ...float64) Segment {
	s := Segment{StartSec: start, EndSec: end, Reliability: reliability, AlertRateMul: 1, QueryRateMul: 1}
	if len(mul) > 0 {
		s.AlertRateMul = mul[0]
	}
	if len(mul) > 1 {
		s.QueryRateMul = mul[1]
	}
	return s
}

// scenarioCatalogue is the required set of built-in scenarios (spec §6.3).
var scenarioCatalogue = map[string]Scenario{
	"Urban": {
		Name: "Urban", BaseAlertRatePerMin: 36, MeanTTLSec: 900, TargetFirstDeliverySec: 120, RegionCount: 18,
		Segments: []Segment{
			seg(0, 180, 0.95),
			seg(180, 420, 0.6, 1.5, 1),
			seg(420, 900, 0.88, 1, 1.8),
			seg(900, math.MaxInt64, 0.96),
		},
	},
	"Suburban": {
		Name: "Suburban", BaseAlertRatePerMin: 12, MeanTTLSec: 1200, TargetFirstDeliverySec: 180, RegionCount: 12,
		Segments: []Segment{
			seg(0, 240, 0.92),
			seg(240, 720, 0.75, 1.2, 1),
			seg(720, 1200, 0.85, 1, 1.4),
			seg(1200, math.MaxInt64, 0.93),
		},
	},
	"Rural": {
		Name: "Rural", BaseAlertRatePerMin: 6, MeanTTLSec: 1800, TargetFirstDeliverySec: 300, RegionCount: 8,
		Segments: []Segment{
			seg(0, 300, 0.9),
			seg(300, 900, 0.55, 1.2, 0.8),
			seg(900, 1500, 0.8, 1, 1.5),
			seg(1500, math.MaxInt64, 0.92),
		},
	},
}

// ScenarioNames returns the built-in scenario names in a stable order.
func ScenarioNames() []string {
	return []string{"Urban", "Suburban", "Rural"}
}

// LookupScenario returns a copy of the named built-in scenario.
func LookupScenario(name string) (Scenario, error) {
	s, ok := scenarioCatalogue[name]
	if !ok {
		return Scenario{}, configErrorf("scenario", "unknown scenario %q; valid: %v", name, ScenarioNames())
	}
	return s, nil
}
