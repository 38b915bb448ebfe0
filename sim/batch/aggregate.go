package batch

import (
	"gonum.org/v1/gonum/stat"

	"github.com/aware-eas/alertsim/sim"
)

// metricKeys is the fixed, ordered set of metrics aggregated across
// replicates (spec §4.9 "fixed list of metric keys").
var metricKeys = []string{
	"cacheHitRate", "deliveryRate", "avgFreshness", "staleAccessRate",
	"redundancyIndex", "actionabilityFirstRatio", "timelinessConsistency",
	"pushesSent", "pushSuppressRate", "pushDuplicateRate", "pushTimelyFirstRatio",
}

func metricValue(m sim.FinalMetrics, key string) float64 {
	switch key {
	case "cacheHitRate":
		return m.CacheHitRate
	case "deliveryRate":
		return m.DeliveryRate
	case "avgFreshness":
		return m.AvgFreshness
	case "staleAccessRate":
		return m.StaleAccessRate
	case "redundancyIndex":
		return m.RedundancyIndex
	case "actionabilityFirstRatio":
		return m.ActionabilityFirstRatio
	case "timelinessConsistency":
		return m.TimelinessConsistency
	case "pushesSent":
		return float64(m.PushesSent)
	case "pushSuppressRate":
		return m.PushSuppressRate
	case "pushDuplicateRate":
		return m.PushDuplicateRate
	case "pushTimelyFirstRatio":
		return m.PushTimelyFirstRatio
	default:
		return 0
	}
}

// MetricAggregate is the mean and sample (Bessel-corrected) standard
// deviation of one metric across a set of replicate runs.
type MetricAggregate struct {
	Mean   float64
	StdDev float64
}

// AggregateMetrics computes mean/stdev for each of the fixed metric keys
// across results. A single-replicate input yields stdev 0 for every key
// (spec §8 scenario 5).
func AggregateMetrics(results []sim.RunResult) map[string]MetricAggregate {
	out := make(map[string]MetricAggregate, len(metricKeys))
	samples := make([]float64, len(results))

	for _, key := range metricKeys {
		for i, r := range results {
			samples[i] = metricValue(r.Metrics, key)
		}
		mean := stat.Mean(samples, nil)
		var sd float64
		if len(samples) > 1 {
			sd = stat.StdDev(samples, nil)
		}
		out[key] = MetricAggregate{Mean: mean, StdDev: sd}
	}
	return out
}
