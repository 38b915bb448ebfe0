package batch

import (
	"fmt"

	"github.com/aware-eas/alertsim/sim"
)

var scanScenarios = []string{"Rural", "Suburban", "Urban"}
var scanCacheSizes = []int{16, 32, 64, 128, 256, 512, 1024, 2048}

// RandomizedScanResult is n runs with freshly randomized options drawn
// from the documented ranges (spec §4.9 "Randomized scan").
type RandomizedScanResult struct {
	Kind    Kind
	Options []sim.RunOptions
	Results []sim.RunResult
}

// RunRandomizedScan draws n option sets from a stream forked off
// seedBase with the "scan" label (keeping option randomization separate
// from any individual run's own RNG stream), then executes them. obs
// (may be nil) receives per-cell instrumentation and sink records.
func RunRandomizedScan(n int, seedBase string, run RunFunc, obs *Observer) (RandomizedScanResult, error) {
	if n < 1 {
		return RandomizedScanResult{}, &sim.ConfigurationError{Field: "n", Reason: "must be >= 1"}
	}

	rng := sim.NewForkedRNG(seedBase, "scan")
	optsList := make([]sim.RunOptions, n)
	for i := 0; i < n; i++ {
		optsList[i] = randomOptions(rng, fmt.Sprintf("%s#scan%d", seedBase, i+1))
	}

	cells := RunAll(optsList, obs.wrap(run, "scan"), concurrencyFor(n))
	results := make([]sim.RunResult, n)
	for _, c := range cells {
		if c.Err != nil {
			return RandomizedScanResult{}, fmt.Errorf("scan cell %d: %w", c.Index, c.Err)
		}
		results[c.Index] = c.Result
	}

	return RandomizedScanResult{Kind: KindRandomizedScan, Options: optsList, Results: results}, nil
}

func randomOptions(rng *sim.RNG, seed string) sim.RunOptions {
	o := sim.DefaultRunOptions()
	o.Seed = seed
	o.ScenarioName = scanScenarios[rng.Intn(len(scanScenarios))]
	o.CacheSize = scanCacheSizes[rng.Intn(len(scanCacheSizes))]
	o.TargetAlertCount = 80 + rng.Intn(2000-80+1)
	o.BaselineReliability = 0.3 + rng.Next()*(1.0-0.3)
	o.HorizonSec = int64(300 + rng.Intn(3600-300+1))
	o.QueryRatePerMin = 10 + rng.Next()*(300-10)

	o.PF.SeverityWeight = rng.Next() * (5.0 / 6.0)
	o.PF.UrgencyWeight = rng.Next() * (5.0 / 6.0)
	o.PF.FreshnessWeight = rng.Next() * (5.0 / 6.0)

	if rng.Next() < 0.6 {
		o.Push.RateLimitPerMin = 1 + rng.Next()*19
		o.Push.DedupWindowSec = int64(30 + rng.Intn(300-30+1))
		o.Push.Threshold = 0.5 + rng.Next()*0.45
	}

	return o
}
