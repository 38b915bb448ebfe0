package sim

// RunResult is the complete output of a single simulation run (spec §6.1).
type RunResult struct {
	Metrics             FinalMetrics
	Timeline            []Sample
	IssuedAlerts        []Alert
	DeliveredAlerts     []Alert
	Environment         *Environment
	RegionStats         map[string]*RegionStats
	Scenario            string
	BaselineReliability float64
	Seed                string
	PFState             *PFStateSnapshot // nil unless PriorityFresh+PF was used
	Info                string
}

// PFStateSnapshot is a resumable snapshot of the PF model's learned
// state (spec §4.7 get_state()).
type PFStateSnapshot struct {
	Weights         []float64
	GradAccum       []float64
	Temperature     float64
	LearningRate    float64
	Regularization  float64
	Decay           float64
	HashBucketCount int
	FeatureCount    int
}
