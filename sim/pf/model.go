package pf

import (
	"math"

	"github.com/aware-eas/alertsim/sim"
)

// Hyperparams configures a Model's learning behavior (spec §4.7 defaults).
type Hyperparams struct {
	LearningRate    float64
	Regularization  float64
	Decay           float64
	Temperature     float64
	Epsilon         float64
	HashBucketCount int
}

// DefaultHyperparams returns the spec-mandated defaults.
func DefaultHyperparams() Hyperparams {
	return Hyperparams{
		LearningRate: 0.05, Regularization: 0.0005, Decay: 0.99,
		Temperature: 1.0, Epsilon: 0, HashBucketCount: 32,
	}
}

// Model is the online logistic regressor described in spec §4.7: a
// weight vector trained with an AdaGrad-like update, producing a
// probability used both to boost PriorityFresh's eviction score and to
// gate push decisions.
//
// Not safe for concurrent use — one Model per simulation run, owned by
// the engine (or its PriorityFresh policy instance).
type Model struct {
	hp Hyperparams

	weights   []float64
	gradAccum []float64

	rng *sim.RNG // exploration draws; forked separately from the engine's RNG
}

// NewModel constructs a zero-initialized Model. rng should be a stream
// forked from the run seed (label "pf") so exploration draws are
// reproducible and isolated from the engine's own RNG consumption.
func NewModel(hp Hyperparams, rng *sim.RNG) *Model {
	n := FeatureCount(hp.HashBucketCount)
	return &Model{
		hp:        hp,
		weights:   make([]float64, n),
		gradAccum: make([]float64, n),
		rng:       rng,
	}
}

// Predict computes p = sigmoid(z / temperature) for a feature vector.
func (m *Model) Predict(features []float64) float64 {
	var z float64
	for i, x := range features {
		z += m.weights[i] * x
	}
	return sigmoid(z / m.hp.Temperature)
}

func sigmoid(z float64) float64 {
	// Clip to guard against overflow in math.Exp (spec §7).
	if z > 40 {
		z = 40
	} else if z < -40 {
		z = -40
	}
	return 1 / (1 + math.Exp(-z))
}

// ScoreDetail is the detailed scoring output of Score (spec §4.7).
type ScoreDetail struct {
	Base        float64
	Boost       float64
	Total       float64
	Probability float64
	Exploration float64
}

// Score evaluates the model at ctx, deriving the alert's base_score
// (spec §4.7) from its severity/urgency and optionally adding an
// ε-greedy exploration perturbation when explore is true.
func (m *Model) Score(ctx Context, explore bool) ScoreDetail {
	features := Features(ctx, m.hp.HashBucketCount)
	p := m.Predict(features)
	base := baseScore(severityNum(ctx.Alert.Severity), ctx.Alert.Urgency == sim.UrgencyImmediate)

	boost := base * (p - 0.5)
	exploration := 0.0
	if explore && m.hp.Epsilon > 0 && m.rng.Next() < m.hp.Epsilon {
		u := m.rng.Next()
		exploration = (u - 0.5) * base * 0.6
		boost += exploration
	}

	return ScoreDetail{
		Base:        base,
		Boost:       boost,
		Total:       base + boost,
		Probability: p,
		Exploration: exploration,
	}
}

// ObserveRetrieval trains the model on a successful retrieval. latency
// and slaSec describe the delivery-to-retrieval gap when an SLA target
// is available (slaSec > 0); otherwise a fixed timeliness of 0.6 is
// used per spec §4.7.
func (m *Model) ObserveRetrieval(ctx Context, latencySec float64, slaSec int64) {
	sevNum := severityNum(ctx.Alert.Severity)
	urgNum := urgencyNum(ctx.Alert.Urgency)
	freshness := ctx.Alert.Freshness(ctx.Now)

	timeliness := 0.6
	if slaSec > 0 {
		timeliness = clip01(1 - latencySec/(1.5*float64(slaSec)))
	}

	label := clip01(0.4*sevNum + 0.2*urgNum + 0.25*freshness + 0.15*timeliness)
	m.train(Features(ctx, m.hp.HashBucketCount), label)
}

// ObserveDrop trains the model on a miss/drop with label 0.
func (m *Model) ObserveDrop(ctx Context) {
	m.train(Features(ctx, m.hp.HashBucketCount), 0)
}

// train applies one squared-error gradient step with AdaGrad-style
// accumulation (spec §4.7). Training steps that would produce a
// non-finite weight are discarded per-feature (spec §7
// NumericOutOfRange).
func (m *Model) train(features []float64, label float64) {
	p := m.Predict(features)
	err := label - p

	for i, x := range features {
		g := err * x
		newAccum := m.hp.Decay*m.gradAccum[i] + g*g
		if !finite(newAccum) {
			continue
		}
		step := (m.hp.LearningRate / math.Sqrt(newAccum+1e-6)) * g
		newW := (1-m.hp.Regularization)*m.weights[i] + step
		if !finite(newW) {
			continue
		}
		m.gradAccum[i] = newAccum
		m.weights[i] = newW
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// State returns a resumable snapshot of the model's learned weights.
func (m *Model) State() (weights, gradAccum []float64) {
	w := make([]float64, len(m.weights))
	copy(w, m.weights)
	g := make([]float64, len(m.gradAccum))
	copy(g, m.gradAccum)
	return w, g
}

// RestoreState loads a previously snapshotted weight/accumulator pair.
// Returns an error if the lengths don't match this model's feature
// count (spec §3 PFState invariant).
func RestoreState(m *Model, weights, gradAccum []float64) error {
	n := FeatureCount(m.hp.HashBucketCount)
	if len(weights) != n || len(gradAccum) != n {
		return &sim.InvariantViolation{
			Invariant: "PFState.len(w) == len(g2) == feature_count",
			Detail:    "restored state length mismatch",
		}
	}
	copy(m.weights, weights)
	copy(m.gradAccum, gradAccum)
	return nil
}

// HistoricalSample is one pre-run training example (spec §4.7
// ingest_historical_samples).
type HistoricalSample struct {
	Features []float64
	Label    float64
}

// IngestHistoricalSamples trains sequentially on each sample before a
// run begins.
func (m *Model) IngestHistoricalSamples(samples []HistoricalSample) {
	for _, s := range samples {
		m.train(s.Features, s.Label)
	}
}

// Hyperparams returns the model's configured hyperparameters.
func (m *Model) Hyperparams() Hyperparams { return m.hp }
