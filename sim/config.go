package sim

// PolicyName identifies one of the four cache replacement disciplines.
type PolicyName string

const (
	PolicyLRU           PolicyName = "LRU"
	PolicyTTLOnly       PolicyName = "TTLOnly"
	PolicyPriorityFresh PolicyName = "PriorityFresh"
	PolicyPAFTinyLFU    PolicyName = "PAFTinyLFU"
)

// PolicyNames returns the four policy names in their canonical order
// (the order multi-policy comparisons must report them in, spec §8
// scenario 4).
func PolicyNames() []PolicyName {
	return []PolicyName{PolicyLRU, PolicyTTLOnly, PolicyPriorityFresh, PolicyPAFTinyLFU}
}

// PushControls configures push-notification decisioning (spec §4.8).
type PushControls struct {
	RateLimitPerMin float64 // R; 0 disables pushes entirely
	DedupWindowSec  int64   // D; <= 0 disables dedup suppression
	Threshold       float64 // tau, probability threshold for a push
}

// DeliveryControls configures the retry behavior of a delivery attempt
// (spec §4.8).
type DeliveryControls struct {
	RetryIntervalSec int64
	MaxAttempts      int
}

// PFWeights configures the PriorityFresh scoring weights and, when
// UsePF is true, the PF model's hyperparameters (spec §4.6, §4.7).
type PFWeights struct {
	SeverityWeight  float64 // w_S, default 2
	UrgencyWeight   float64 // w_U, default 3
	FreshnessWeight float64 // w_F, default 4

	UsePF              bool
	LearningRate       float64 // default 0.05
	Regularization     float64 // default 0.0005
	Decay              float64 // default 0.99
	Temperature        float64 // default 1.0
	Epsilon            float64 // default 0 (exploration rate)
	HashBucketCount    int     // B, default 32
}

func defaultPFWeights() PFWeights {
	return PFWeights{
		SeverityWeight: 2, UrgencyWeight: 3, FreshnessWeight: 4,
		LearningRate: 0.05, Regularization: 0.0005, Decay: 0.99,
		Temperature: 1.0, Epsilon: 0, HashBucketCount: 32,
	}
}

// RunOptions configures a single simulation run (spec §4.8).
type RunOptions struct {
	ScenarioName string
	Policy       PolicyName
	CacheSize    int

	TargetAlertCount     int
	BaselineReliability  float64 // in [0, 1]
	HorizonSec           int64
	QueryRatePerMin      float64
	Seed                 string

	PF    PFWeights
	Push  PushControls
	Delivery DeliveryControls
}

// DefaultRunOptions returns a RunOptions with every optional field at its
// spec-mandated default.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Policy:   PolicyPriorityFresh,
		PF:       defaultPFWeights(),
		Delivery: DeliveryControls{RetryIntervalSec: 30, MaxAttempts: 1},
	}
}

// Validate checks RunOptions for configuration errors, failing fast
// before any work or side effects occur (spec §7).
func (o *RunOptions) Validate() error {
	if o.Seed == "" {
		return configErrorf("seed", "must not be empty")
	}
	if _, err := LookupScenario(o.ScenarioName); err != nil {
		return err
	}
	if o.CacheSize <= 0 {
		return configErrorf("cacheSize", "must be positive, got %d", o.CacheSize)
	}
	if o.TargetAlertCount <= 0 {
		return configErrorf("targetAlertCount", "must be positive, got %d", o.TargetAlertCount)
	}
	if o.HorizonSec <= 0 {
		return configErrorf("horizonSec", "must be positive, got %d", o.HorizonSec)
	}
	if o.BaselineReliability < 0 || o.BaselineReliability > 1 {
		return configErrorf("baselineReliability", "must be in [0,1], got %v", o.BaselineReliability)
	}
	switch o.Policy {
	case PolicyLRU, PolicyTTLOnly, PolicyPriorityFresh, PolicyPAFTinyLFU:
	default:
		return configErrorf("policy", "unknown policy %q; valid: %v", o.Policy, PolicyNames())
	}
	// spec §9 open question 3: retry_interval_sec=0 with max_attempts>1 is
	// clamped to max(1, ...) rather than rejected.
	if o.Delivery.RetryIntervalSec < 1 {
		o.Delivery.RetryIntervalSec = 1
	}
	if o.Delivery.MaxAttempts < 1 {
		o.Delivery.MaxAttempts = 1
	}
	if o.PF.HashBucketCount <= 0 {
		o.PF.HashBucketCount = 32
	}
	if o.PF.Temperature <= 0 {
		o.PF.Temperature = 1.0
	}
	return nil
}
