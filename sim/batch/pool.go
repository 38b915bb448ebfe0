package batch

import (
	"sync"

	"github.com/aware-eas/alertsim/sim"
)

// RunFunc executes a single simulation run. Production callers pass
// engine.RunSimulation; tests may substitute a stub.
type RunFunc func(sim.RunOptions) (sim.RunResult, error)

// CellResult pairs one RunOptions with its outcome, preserving its
// original position so callers can reassemble ordered output after
// parallel execution.
type CellResult struct {
	Index   int
	Options sim.RunOptions
	Result  sim.RunResult
	Err     error
}

// RunAll executes every element of opts via run, bounded to at most
// concurrency simultaneous runs (spec §5: runs are pure functions of
// (options, seed) sharing no mutable state, so parallelizing at run
// granularity is always safe). concurrency <= 1 runs sequentially.
// Results are returned in the same order as opts regardless of
// completion order.
func RunAll(opts []sim.RunOptions, run RunFunc, concurrency int) []CellResult {
	results := make([]CellResult, len(opts))

	if concurrency <= 1 {
		for i, o := range opts {
			r, err := run(o)
			results[i] = CellResult{Index: i, Options: o, Result: r, Err: err}
		}
		return results
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	wg.Add(len(opts))

	for i, o := range opts {
		sem <- struct{}{}
		go func(i int, o sim.RunOptions) {
			defer wg.Done()
			defer func() { <-sem }()
			r, err := run(o)
			results[i] = CellResult{Index: i, Options: o, Result: r, Err: err}
		}(i, o)
	}

	wg.Wait()
	return results
}
