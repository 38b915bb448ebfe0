// Package pf implements the online "Priority Forecast" logistic model:
// feature extraction over alert + region history context, sigmoid
// prediction, and an AdaGrad-style training update (spec §4.7).
package pf

import (
	"hash/fnv"
	"math"

	"github.com/aware-eas/alertsim/sim"
)

// baseFeatureCount is the fixed portion of the feature vector before the
// B hashed-bucket features (spec §4.7: F = 23 + B).
const baseFeatureCount = 23

// Context bundles everything Features needs to build the vector for one
// (alert, moment) pair.
type Context struct {
	Alert   *sim.Alert
	Now     int64
	Region  sim.Region
	Weather sim.WeatherRecord
	Anomaly sim.AnomalyRecord
}

// FeatureCount returns the total feature vector length for a given
// hash-bucket count.
func FeatureCount(hashBucketCount int) int {
	return baseFeatureCount + hashBucketCount
}

func severityNum(s sim.Severity) float64 {
	switch s {
	case sim.SeverityExtreme:
		return 1
	case sim.SeveritySevere:
		return 0.75
	case sim.SeverityModerate:
		return 0.45
	case sim.SeverityMinor:
		return 0.25
	default:
		return 0.4
	}
}

func urgencyNum(u sim.Urgency) float64 {
	if u == sim.UrgencyImmediate {
		return 1
	}
	return 0
}

// regionSevNum numbers a region's categorical severity the same way an
// alert's severity is numbered, reusing severityNum's scale.
func regionSevNum(s sim.RegionSeverity) float64 {
	switch s {
	case sim.RegionSeverityExtreme:
		return 1
	case sim.RegionSeveritySevere:
		return 0.75
	default:
		return 0.45
	}
}

const baseNorm = 15.0

func baseScore(sevNum float64, immediate bool) float64 {
	s := baseNorm*0.6 + sevNum*3
	if immediate {
		s += 2
	}
	return s
}

func reliabilityComposite(a sim.AnomalyRecord) float64 {
	v := a.HistoricalAccuracy*0.5 + (1-a.FalseAlarmRate)*0.25 + (1-a.LastMinuteDiversionRate)*0.15 + a.AccuracyTrend*0.1
	return clip01(v)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func fnv32a(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// Features builds the fixed-order feature vector described in spec
// §4.7. hashBucketCount (B) controls the trailing hashed-feature tail.
func Features(ctx Context, hashBucketCount int) []float64 {
	a := ctx.Alert
	sevNum := severityNum(a.Severity)
	immediate := a.Urgency == sim.UrgencyImmediate
	freshness := a.Freshness(ctx.Now)
	bScore := baseScore(sevNum, immediate)
	tod := float64(((ctx.Now % 86400) + 86400) % 86400)

	f := make([]float64, baseFeatureCount+hashBucketCount)
	f[0] = 1
	f[1] = sevNum
	f[2] = urgencyNum(a.Urgency)
	f[3] = float64(a.TTLSec) / 3600
	f[4] = freshness
	f[5] = regionSevNum(ctx.Region.Severity)
	f[6] = (ctx.Region.LocalFactor - 0.7) / 0.6
	f[7] = ctx.Weather.FloodFrequency
	f[8] = ctx.Weather.RainfallMeanMM / 160
	f[9] = ctx.Weather.RainfallVolatility
	f[10] = 1 - ctx.Weather.DrainageScore
	f[11] = ctx.Weather.ShelterDemandIndex
	f[12] = bScore / baseNorm
	f[13] = ctx.Anomaly.FalseAlarmRate
	f[14] = ctx.Anomaly.LastMinuteDiversionRate
	f[15] = ctx.Anomaly.HistoricalAccuracy
	f[16] = ctx.Anomaly.TypicalLeadTimeSec / 3600
	f[17] = ctx.Anomaly.UnderestimationRate
	f[18] = ctx.Anomaly.OverestimationRate
	f[19] = reliabilityComposite(ctx.Anomaly)
	f[20] = math.Sin(2 * math.Pi * tod / 86400)
	f[21] = math.Cos(2 * math.Pi * tod / 86400)
	f[22] = float64(a.UpdateNo) / 4

	if hashBucketCount > 0 {
		items := make([]string, 0, 3)
		for _, v := range []string{string(a.EventType), a.RegionID, a.ThreadKey} {
			if v != "" {
				items = append(items, v)
			}
		}
		if len(items) > 0 {
			weight := 1.0 / float64(len(items))
			for _, item := range items {
				k := int(fnv32a(item) % uint32(hashBucketCount))
				f[baseFeatureCount+k] += weight
			}
		}
	}

	return f
}
