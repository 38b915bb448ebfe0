package batch

import (
	"fmt"

	"github.com/aware-eas/alertsim/sim"
)

// Kind discriminates the shape of a BatchResult (spec §4.9: "each
// returning a discriminated record with a kind tag").
type Kind string

const (
	KindReplicated     Kind = "Replicated"
	KindMultiPolicy    Kind = "MultiPolicy"
	KindDevice         Kind = "Device"
	KindNetwork        Kind = "Network"
	KindCombined       Kind = "Combined"
	KindRandomizedScan Kind = "RandomizedScan"
)

// deviceCacheSizes is the required ordered cache-size sweep (spec §4.9).
var deviceCacheSizes = []int{32, 128, 256, 512, 1024}

// networkReliabilities is the required ordered reliability sweep (spec §4.9).
var networkReliabilities = []float64{1.0, 0.95, 0.9, 0.85, 0.7, 0.6, 0.5, 0.3}

// ReplicatedResult is the outcome of running one option set across
// replicate seeds (spec §4.9 "Replicated batch").
type ReplicatedResult struct {
	Kind      Kind
	Seeds     []string
	Results   []sim.RunResult
	Aggregate map[string]MetricAggregate
}

// RunReplicated runs base across replicates seeds derived per mode,
// returning individual results plus the metric aggregate. obs (may be
// nil) receives per-cell instrumentation and sink records.
func RunReplicated(base sim.RunOptions, replicates int, mode SeedMode, run RunFunc, obs *Observer) (ReplicatedResult, error) {
	if replicates < 1 {
		return ReplicatedResult{}, &sim.ConfigurationError{Field: "replicates", Reason: "must be >= 1"}
	}

	seeds := make([]string, replicates)
	optsList := make([]sim.RunOptions, replicates)
	for i := 0; i < replicates; i++ {
		o := base
		o.Seed = DeriveSeed(base.Seed, mode, i)
		seeds[i] = o.Seed
		optsList[i] = o
	}

	cells := RunAll(optsList, obs.wrap(run, "replicated"), concurrencyFor(replicates))
	results := make([]sim.RunResult, replicates)
	for _, c := range cells {
		if c.Err != nil {
			return ReplicatedResult{}, fmt.Errorf("replicate %d: %w", c.Index, c.Err)
		}
		results[c.Index] = c.Result
	}

	return ReplicatedResult{
		Kind:      KindReplicated,
		Seeds:     seeds,
		Results:   results,
		Aggregate: AggregateMetrics(results),
	}, nil
}

// PolicyRunResult pairs a policy name with its run result, preserving
// the canonical policy order.
type PolicyRunResult struct {
	Policy sim.PolicyName
	Result sim.RunResult
}

// MultiPolicyResult is the outcome of running the same options under
// every cache policy, in canonical order (spec §4.9, §8 scenario 4).
type MultiPolicyResult struct {
	Kind  Kind
	Seed  string
	Base  sim.RunOptions // common options shared by every cell (Policy field is ignored)
	Cells []PolicyRunResult
}

// RunMultiPolicy runs base under all four policies with a deterministic
// (unmodified) seed, in canonical policy order. obs (may be nil)
// receives per-cell instrumentation and sink records.
func RunMultiPolicy(base sim.RunOptions, run RunFunc, obs *Observer) (MultiPolicyResult, error) {
	names := sim.PolicyNames()
	optsList := make([]sim.RunOptions, len(names))
	for i, name := range names {
		o := base
		o.Policy = name
		optsList[i] = o
	}

	cells := RunAll(optsList, obs.wrap(run, "multiPolicy"), concurrencyFor(len(names)))
	out := make([]PolicyRunResult, len(names))
	for _, c := range cells {
		if c.Err != nil {
			return MultiPolicyResult{}, fmt.Errorf("policy %s: %w", names[c.Index], c.Err)
		}
		out[c.Index] = PolicyRunResult{Policy: names[c.Index], Result: c.Result}
	}

	return MultiPolicyResult{Kind: KindMultiPolicy, Seed: base.Seed, Base: base, Cells: out}, nil
}

// DeviceResult sweeps the required cache-size list, each cell a
// multi-policy comparison (spec §4.9 "Device comparison").
type DeviceResult struct {
	Kind       Kind
	CacheSizes []int
	Cells      []MultiPolicyResult
}

// RunDeviceComparison runs a multi-policy comparison at each of the
// required cache sizes, overriding base.CacheSize per cell.
func RunDeviceComparison(base sim.RunOptions, run RunFunc, obs *Observer) (DeviceResult, error) {
	cells := make([]MultiPolicyResult, len(deviceCacheSizes))
	for i, size := range deviceCacheSizes {
		o := base
		o.CacheSize = size
		mp, err := RunMultiPolicy(o, run, obs)
		if err != nil {
			return DeviceResult{}, fmt.Errorf("cacheSize %d: %w", size, err)
		}
		cells[i] = mp
	}
	return DeviceResult{Kind: KindDevice, CacheSizes: deviceCacheSizes, Cells: cells}, nil
}

// NetworkResult sweeps the required reliability list, each cell a
// multi-policy comparison (spec §4.9 "Network comparison").
type NetworkResult struct {
	Kind          Kind
	Reliabilities []float64
	Cells         []MultiPolicyResult
}

// RunNetworkComparison runs a multi-policy comparison at each of the
// required baseline reliabilities, overriding base.BaselineReliability.
func RunNetworkComparison(base sim.RunOptions, run RunFunc, obs *Observer) (NetworkResult, error) {
	cells := make([]MultiPolicyResult, len(networkReliabilities))
	for i, rel := range networkReliabilities {
		o := base
		o.BaselineReliability = rel
		mp, err := RunMultiPolicy(o, run, obs)
		if err != nil {
			return NetworkResult{}, fmt.Errorf("reliability %v: %w", rel, err)
		}
		cells[i] = mp
	}
	return NetworkResult{Kind: KindNetwork, Reliabilities: networkReliabilities, Cells: cells}, nil
}

// CombinedResult is the Cartesian product of Device x Network, each
// cell a multi-policy comparison (spec §4.9 "Combined comparison").
type CombinedResult struct {
	Kind          Kind
	CacheSizes    []int
	Reliabilities []float64
	Cells         [][]MultiPolicyResult // Cells[deviceIdx][networkIdx]
}

// RunCombinedComparison runs the full cache-size x reliability grid.
func RunCombinedComparison(base sim.RunOptions, run RunFunc, obs *Observer) (CombinedResult, error) {
	grid := make([][]MultiPolicyResult, len(deviceCacheSizes))
	for di, size := range deviceCacheSizes {
		row := make([]MultiPolicyResult, len(networkReliabilities))
		for ni, rel := range networkReliabilities {
			o := base
			o.CacheSize = size
			o.BaselineReliability = rel
			mp, err := RunMultiPolicy(o, run, obs)
			if err != nil {
				return CombinedResult{}, fmt.Errorf("cacheSize %d reliability %v: %w", size, rel, err)
			}
			row[ni] = mp
		}
		grid[di] = row
	}
	return CombinedResult{
		Kind: KindCombined, CacheSizes: deviceCacheSizes, Reliabilities: networkReliabilities, Cells: grid,
	}, nil
}

// concurrencyFor picks the worker-pool width for n independent runs: a
// single cell runs alone, larger batches get one worker per cell, capped
// at 8.
func concurrencyFor(n int) int {
	if n <= 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
