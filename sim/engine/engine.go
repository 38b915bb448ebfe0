// Package engine drives a single simulation run: it wires together the
// environment, history, alert stream, cache policy, and optional PF
// model described in package sim, and produces a sim.RunResult (spec
// §4.8).
package engine

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/aware-eas/alertsim/sim"
	"github.com/aware-eas/alertsim/sim/pf"
	"github.com/aware-eas/alertsim/sim/policy"
)

// pendingAttempt is a queued retry for a delivery that failed on first
// attempt (spec §4.8 step 2).
type pendingAttempt struct {
	alert         sim.Alert
	nextAttemptAt int64
	attemptsLeft  int
}

// threadState tracks per-thread bookkeeping the engine needs beyond
// what any individual Alert carries (spec §3: kept off the Alert type).
type threadState struct {
	deliveryCount  int
	firstRetrieved bool
	firstPushed    bool
	lastPushAt     int64 // -1 means "no push yet"
}

func newThreadState() *threadState {
	return &threadState{lastPushAt: -1}
}

// RunSimulation executes one deterministic simulation run per spec §4.8.
// It never panics outward: an InvariantViolation raised anywhere in the
// run is recovered here and returned as an error so a batch of runs
// cannot be taken down by a single bad one (spec §7).
func RunSimulation(opts sim.RunOptions) (result sim.RunResult, err error) {
	if verr := opts.Validate(); verr != nil {
		return sim.RunResult{}, verr
	}

	defer func() {
		if r := recover(); r != nil {
			if iv, ok := r.(*sim.InvariantViolation); ok {
				logrus.WithFields(logrus.Fields{
					"seed": opts.Seed, "invariant": iv.Invariant,
				}).Error("simulation aborted on invariant violation")
				err = iv
				return
			}
			panic(r)
		}
	}()

	e := newEngine(opts)
	return e.run(), nil
}

type engineState struct {
	opts     sim.RunOptions
	rng      *sim.RNG
	scenario sim.Scenario

	env     *sim.Environment
	regions map[string]sim.Region
	weather map[string]sim.WeatherRecord
	anomaly map[string]sim.AnomalyRecord

	pol     policy.Policy
	pfModel *pf.Model

	alertsByTick map[int64][]sim.Alert
	issuedCount  int

	pending []pendingAttempt

	threads       map[string]*threadState
	deliveredAt   map[string]int64
	retrievedOnce map[string]bool

	pushWindow []int64

	regionStats map[string]*sim.RegionStats
	metrics     *sim.MetricsAccumulator

	timeline        []sim.Sample
	issuedAlerts    []sim.Alert
	deliveredAlerts []sim.Alert
}

func newEngine(opts sim.RunOptions) *engineState {
	scenario, err := sim.LookupScenario(opts.ScenarioName)
	if err != nil {
		// Validate already checked this; a failure here is a bug.
		panic(&sim.InvariantViolation{
			Invariant: "scenario lookup after validate",
			Detail:    err.Error(),
		})
	}

	rng := sim.NewSeededRNG(opts.Seed)
	envRNG := sim.NewForkedRNG(opts.Seed, "env")
	env, envErr := sim.GenerateEnvironment(envRNG, sim.DefaultPlaneWidth, sim.DefaultPlaneHeight, scenario.RegionCount)
	if envErr != nil {
		panic(&sim.InvariantViolation{Invariant: "environment generation", Detail: envErr.Error()})
	}

	regionsByID := make(map[string]sim.Region, len(env.Regions))
	for _, r := range env.Regions {
		regionsByID[r.ID] = r
	}

	weather := sim.GenerateWeatherHistory(opts.Seed, env)
	anomaly := sim.GenerateAnomalyHistory(opts.Seed, env)

	regionStats := make(map[string]*sim.RegionStats, len(env.Regions))
	for _, r := range env.Regions {
		regionStats[r.ID] = &sim.RegionStats{}
	}

	pol, err := policy.New(opts.Policy, opts.CacheSize)
	if err != nil {
		panic(&sim.InvariantViolation{Invariant: "policy construction after validate", Detail: err.Error()})
	}

	var model *pf.Model
	if opts.Policy == sim.PolicyPriorityFresh && opts.PF.UsePF {
		pfRNG := sim.NewForkedRNG(opts.Seed, "pf")
		hp := pf.Hyperparams{
			LearningRate:    opts.PF.LearningRate,
			Regularization:  opts.PF.Regularization,
			Decay:           opts.PF.Decay,
			Temperature:     opts.PF.Temperature,
			Epsilon:         opts.PF.Epsilon,
			HashBucketCount: opts.PF.HashBucketCount,
		}
		model = pf.NewModel(hp, pfRNG)
		weights := policy.ScoreWeights{
			Severity: opts.PF.SeverityWeight, Urgency: opts.PF.UrgencyWeight, Freshness: opts.PF.FreshnessWeight,
		}
		pol = policy.NewPriorityFreshWithPF(opts.CacheSize, weights, model, regionsByID, weather, anomaly)
	}

	streamRNG := sim.NewForkedRNG(opts.Seed, "stream")
	alerts := sim.GenerateAlertStream(streamRNG, env, scenario, opts.TargetAlertCount, opts.HorizonSec)

	byTick := make(map[int64][]sim.Alert, len(alerts))
	for _, a := range alerts {
		tick := a.IssuedAt
		byTick[tick] = append(byTick[tick], a)
	}

	return &engineState{
		opts:          opts,
		rng:           rng,
		scenario:      scenario,
		env:           env,
		regions:       regionsByID,
		weather:       weather,
		anomaly:       anomaly,
		pol:           pol,
		pfModel:       model,
		alertsByTick:  byTick,
		issuedCount:   len(alerts),
		threads:       make(map[string]*threadState),
		deliveredAt:   make(map[string]int64),
		retrievedOnce: make(map[string]bool),
		regionStats:   regionStats,
		metrics:       sim.NewMetricsAccumulator(opts.TargetAlertCount),
		issuedAlerts:  alerts,
	}
}

func (e *engineState) threadFor(key string) *threadState {
	ts, ok := e.threads[key]
	if !ok {
		ts = newThreadState()
		e.threads[key] = ts
	}
	return ts
}

func (e *engineState) run() sim.RunResult {
	for t := int64(0); t < e.opts.HorizonSec; t++ {
		e.processArrivals(t)
		e.processRetries(t)
		e.processQueries(t)

		e.timeline = append(e.timeline, sim.Sample{
			T: t, CacheSize: e.pol.Size(), Hits: e.metrics.Hits, Misses: e.metrics.Misses,
		})
	}

	// Retries still pending at the horizon never land; count them as drops.
	for _, p := range e.pending {
		e.recordDrop(p.alert)
	}
	e.pending = nil

	if e.metrics.Delivered+e.metrics.Dropped != e.issuedCount {
		panicFinalMismatch(e.metrics.Delivered, e.metrics.Dropped, e.issuedCount)
	}

	return sim.RunResult{
		Metrics:             e.metrics.Finalize(),
		Timeline:            e.timeline,
		IssuedAlerts:        e.issuedAlerts,
		DeliveredAlerts:     e.deliveredAlerts,
		Environment:         e.env,
		RegionStats:         e.regionStats,
		Scenario:            e.scenario.Name,
		BaselineReliability: e.opts.BaselineReliability,
		Seed:                e.opts.Seed,
		PFState:             e.pfStateSnapshot(),
		Info:                e.summaryInfo(),
	}
}

func panicFinalMismatch(delivered, dropped, issued int) {
	panic(&sim.InvariantViolation{
		Invariant: "delivered + dropped == issued",
		Detail:    fmt.Sprintf("delivered=%d dropped=%d issued=%d", delivered, dropped, issued),
	})
}

func (e *engineState) pfStateSnapshot() *sim.PFStateSnapshot {
	if e.pfModel == nil {
		return nil
	}
	w, g := e.pfModel.State()
	hp := e.pfModel.Hyperparams()
	return &sim.PFStateSnapshot{
		Weights: w, GradAccum: g,
		Temperature: hp.Temperature, LearningRate: hp.LearningRate,
		Regularization: hp.Regularization, Decay: hp.Decay,
		HashBucketCount: hp.HashBucketCount, FeatureCount: pf.FeatureCount(hp.HashBucketCount),
	}
}

func (e *engineState) summaryInfo() string {
	return e.scenario.Name + "/" + string(e.opts.Policy) + " seed=" + e.opts.Seed
}

// === Arrivals & retries ===

func (e *engineState) processArrivals(t int64) {
	for _, a := range e.alertsByTick[t] {
		if e.attemptDelivery(a, t) {
			continue
		}
		if e.opts.Delivery.MaxAttempts > 1 {
			e.pending = append(e.pending, pendingAttempt{
				alert:         a,
				nextAttemptAt: t + e.opts.Delivery.RetryIntervalSec,
				attemptsLeft:  e.opts.Delivery.MaxAttempts - 1,
			})
		} else {
			e.recordDrop(a)
		}
	}
}

func (e *engineState) processRetries(t int64) {
	if len(e.pending) == 0 {
		return
	}
	kept := e.pending[:0]
	for _, p := range e.pending {
		if p.alert.Expired(t) {
			e.recordDrop(p.alert)
			continue
		}
		if t < p.nextAttemptAt {
			kept = append(kept, p)
			continue
		}
		if e.attemptDelivery(p.alert, t) {
			continue
		}
		p.attemptsLeft--
		if p.attemptsLeft <= 0 {
			e.recordDrop(p.alert)
			continue
		}
		p.nextAttemptAt = t + e.opts.Delivery.RetryIntervalSec
		kept = append(kept, p)
	}
	e.pending = kept
}

func (e *engineState) recordDrop(a sim.Alert) {
	e.metrics.Dropped++
	if rs, ok := e.regionStats[a.RegionID]; ok {
		rs.Dropped++
	}
}

// attemptDelivery performs a single Bernoulli delivery trial against the
// region/segment-adjusted effective reliability (spec §4.8).
func (e *engineState) attemptDelivery(a sim.Alert, t int64) bool {
	seg := e.scenario.ActiveSegment(t)
	region := e.regions[a.RegionID]
	rEff := clip01(e.opts.BaselineReliability * seg.Reliability * region.LocalFactor)

	if e.rng.Next() >= rEff {
		return false
	}

	e.metrics.Delivered++
	if rs, ok := e.regionStats[a.RegionID]; ok {
		rs.Delivered++
	}
	e.deliveredAlerts = append(e.deliveredAlerts, a)
	e.deliveredAt[a.ID] = t

	ts := e.threadFor(a.ThreadKey)
	ts.deliveryCount++
	if ts.deliveryCount > 1 {
		e.metrics.DuplicateDelivered++
	}

	e.pol.Put(a, t)
	e.evaluatePush(a, t)
	return true
}

// === Push decisioning ===

func (e *engineState) evaluatePush(a sim.Alert, t int64) {
	if e.opts.Push.RateLimitPerMin <= 0 {
		return
	}

	cutoff := t - 60
	i := 0
	for i < len(e.pushWindow) && e.pushWindow[i] <= cutoff {
		i++
	}
	e.pushWindow = e.pushWindow[i:]

	withinRate := float64(len(e.pushWindow)) < e.opts.Push.RateLimitPerMin

	ts := e.threadFor(a.ThreadKey)
	notDuplicate := e.opts.Push.DedupWindowSec <= 0 || ts.lastPushAt < 0 || t-ts.lastPushAt > e.opts.Push.DedupWindowSec

	p := 0.0
	if e.pfModel != nil {
		p = e.pfModel.Score(e.pfContext(a, t), false).Probability
	}

	highImpact := a.Urgency == sim.UrgencyImmediate || a.Severity == sim.SeverityExtreme || a.Severity == sim.SeveritySevere

	explore := false
	if e.pfModel != nil {
		eps := e.pfModel.Hyperparams().Epsilon
		if eps > 0 && e.rng.Next() < eps {
			explore = true
		}
	}

	if !(withinRate && notDuplicate && (p >= e.opts.Push.Threshold || explore || highImpact)) {
		e.metrics.PushSuppressCount++
		return
	}

	e.metrics.PushesSent++
	e.pushWindow = append(e.pushWindow, t)
	hadPreviousPush := ts.lastPushAt >= 0
	ts.lastPushAt = t
	if hadPreviousPush {
		e.metrics.PushDuplicates++
	}
	if !ts.firstPushed {
		ts.firstPushed = true
		e.metrics.ThreadsWithFirstPush++
		if t-a.IssuedAt <= e.scenario.TargetFirstDeliverySec {
			e.metrics.ThreadsTimelyFirstPush++
		}
	}
}

func (e *engineState) pfContext(a sim.Alert, t int64) pf.Context {
	return pf.Context{
		Alert:   &a,
		Now:     t,
		Region:  e.regions[a.RegionID],
		Weather: e.weather[a.RegionID],
		Anomaly: e.anomaly[a.RegionID],
	}
}

// === Queries ===

func (e *engineState) processQueries(t int64) {
	seg := e.scenario.ActiveSegment(t)
	q := (e.opts.QueryRatePerMin / 60.0) * seg.QueryRateMul
	k := sim.PoissonSample(e.rng, q)

	for i := 0; i < k; i++ {
		entries := e.pol.Entries(t)
		if len(entries) == 0 {
			e.metrics.Misses++
			continue
		}

		chosen := e.weightedPick(entries, t)
		retrieved, ok := e.pol.Get(chosen.ID, t)
		if !ok {
			e.metrics.Misses++
			if e.pfModel != nil {
				e.pfModel.ObserveDrop(e.pfContext(chosen, t))
			}
			continue
		}

		e.metrics.Hits++
		freshness := retrieved.Freshness(t)
		e.metrics.FreshnessSum += freshness
		if freshness == 0 {
			e.metrics.StaleHits++
		}

		if !e.retrievedOnce[retrieved.ID] {
			e.retrievedOnce[retrieved.ID] = true
			if rs, okRS := e.regionStats[retrieved.RegionID]; okRS {
				rs.FirstRetrievals++
				if deliveredAt, okD := e.deliveredAt[retrieved.ID]; okD {
					rs.FirstLatSum += float64(t - deliveredAt)
				}
			}
		}

		ts := e.threadFor(retrieved.ThreadKey)
		if !ts.firstRetrieved {
			ts.firstRetrieved = true
			e.metrics.ThreadsWithFirstRetrieval++
			actionable := retrieved.Urgency == sim.UrgencyImmediate ||
				retrieved.Severity == sim.SeverityExtreme || retrieved.Severity == sim.SeveritySevere
			if actionable {
				e.metrics.ThreadsActionableFirst++
			}
			if t-retrieved.IssuedAt <= e.scenario.TargetFirstDeliverySec {
				e.metrics.ThreadsTimely++
			}
		}

		if e.pfModel != nil {
			latency := float64(t - e.deliveredAt[retrieved.ID])
			e.pfModel.ObserveRetrieval(e.pfContext(retrieved, t), latency, e.scenario.TargetFirstDeliverySec)
		}
	}
}

// weightedPick selects one entry from a non-empty slice, weighted by
// urg_weight·sev_weight·freshness(a,t) (spec §4.8 step 3). Falls back to
// uniform selection if every weight is zero (e.g. all entries expired
// between entries() and this call, which should not happen since
// entries() already purges).
func (e *engineState) weightedPick(entries []sim.Alert, t int64) sim.Alert {
	total := 0.0
	weights := make([]float64, len(entries))
	for i, a := range entries {
		w := sim.UrgWeight(a.Urgency) * sim.SevWeight(a.Severity) * a.Freshness(t)
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return entries[e.rng.Intn(len(entries))]
	}
	r := e.rng.Next() * total
	running := 0.0
	for i, w := range weights {
		running += w
		if r < running {
			return entries[i]
		}
	}
	return entries[len(entries)-1]
}

func clip01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
