package sim

// Sample is one per-second timeline point (spec §3).
type Sample struct {
	T         int64
	CacheSize int
	Hits      int64
	Misses    int64
}

// RegionStats accumulates per-region delivery/retrieval counters over a
// run (spec §3).
type RegionStats struct {
	Delivered       int
	Dropped         int
	FirstRetrievals int
	FirstLatSum     float64
}

// AvgFirstRetrievalLatency returns the mean latency between delivery and
// first retrieval for this region, or 0 if nothing was ever retrieved.
func (rs RegionStats) AvgFirstRetrievalLatency() float64 {
	if rs.FirstRetrievals == 0 {
		return 0
	}
	return rs.FirstLatSum / float64(rs.FirstRetrievals)
}

// MetricsAccumulator accumulates raw counts during a run; FinalMetrics
// (spec §6.2) is derived from it once the run completes. Owned
// exclusively by the engine driving the run.
type MetricsAccumulator struct {
	Hits   int64
	Misses int64

	Delivered          int
	Dropped            int
	DuplicateDelivered int

	FreshnessSum float64
	StaleHits    int

	ThreadsWithFirstRetrieval int
	ThreadsActionableFirst    int
	ThreadsTimely             int

	PushesSent             int
	PushSuppressCount      int
	PushDuplicates         int
	ThreadsWithFirstPush   int
	ThreadsTimelyFirstPush int

	TargetAlertCount int
}

// NewMetricsAccumulator constructs an accumulator for a run targeting
// targetAlertCount issued alerts (the deliveryRate denominator).
func NewMetricsAccumulator(targetAlertCount int) *MetricsAccumulator {
	return &MetricsAccumulator{TargetAlertCount: targetAlertCount}
}

// FinalMetrics holds the eleven metrics computed at the end of a run
// (spec §6.2). All rates lie in [0, 1] except pushesSent (a raw count).
type FinalMetrics struct {
	CacheHitRate            float64
	DeliveryRate            float64
	AvgFreshness            float64
	StaleAccessRate         float64
	RedundancyIndex         float64
	ActionabilityFirstRatio float64
	TimelinessConsistency   float64
	PushesSent              int
	PushSuppressRate        float64
	PushDuplicateRate       float64
	PushTimelyFirstRatio    float64
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Finalize computes FinalMetrics per the definitions in spec §6.2.
func (c *MetricsAccumulator) Finalize() FinalMetrics {
	hitsPlusMisses := float64(c.Hits + c.Misses)

	m := FinalMetrics{
		CacheHitRate:            safeDiv(float64(c.Hits), hitsPlusMisses),
		DeliveryRate:            safeDiv(float64(c.Delivered), float64(c.TargetAlertCount)),
		AvgFreshness:            safeDiv(c.FreshnessSum, float64(c.Hits)),
		StaleAccessRate:         safeDiv(float64(c.StaleHits), float64(c.Hits)),
		RedundancyIndex:         safeDiv(float64(c.DuplicateDelivered), float64(c.Delivered)),
		ActionabilityFirstRatio: safeDiv(float64(c.ThreadsActionableFirst), float64(max1(c.ThreadsWithFirstRetrieval))),
		TimelinessConsistency:   safeDiv(float64(c.ThreadsTimely), float64(max1(c.ThreadsWithFirstRetrieval))),
		PushesSent:              c.PushesSent,
		PushSuppressRate:        safeDiv(float64(c.PushSuppressCount), float64(c.Delivered)),
		PushDuplicateRate:       safeDiv(float64(c.PushDuplicates), float64(c.PushesSent)),
		PushTimelyFirstRatio:    safeDiv(float64(c.ThreadsTimelyFirstPush), float64(max1(c.ThreadsWithFirstPush))),
	}
	return clipMetrics(m)
}

// max1 implements the spec's "denominator >= 1 by convention" rule for
// the two thread-ratio metrics whose natural denominator can be zero.
func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// clipMetrics guards against NaN/Inf leaking into reported metrics
// (NumericOutOfRange, spec §7): any non-finite rate is clipped to 0.
func clipMetrics(m FinalMetrics) FinalMetrics {
	clipRate := func(v float64) float64 {
		if v != v || v < 0 || v > 1e18 { // NaN check via self-inequality
			return 0
		}
		return v
	}
	m.CacheHitRate = clipRate(m.CacheHitRate)
	m.DeliveryRate = clipRate(m.DeliveryRate)
	m.AvgFreshness = clipRate(m.AvgFreshness)
	m.StaleAccessRate = clipRate(m.StaleAccessRate)
	m.RedundancyIndex = clipRate(m.RedundancyIndex)
	m.ActionabilityFirstRatio = clipRate(m.ActionabilityFirstRatio)
	m.TimelinessConsistency = clipRate(m.TimelinessConsistency)
	m.PushSuppressRate = clipRate(m.PushSuppressRate)
	m.PushDuplicateRate = clipRate(m.PushDuplicateRate)
	m.PushTimelyFirstRatio = clipRate(m.PushTimelyFirstRatio)
	return m
}
