package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aware-eas/alertsim/sim"
)

// Instrumentation exposes Prometheus counters/histograms for a batch
// run, for optional scraping via an exposed /metrics endpoint. Nil-safe:
// every method is a no-op on a nil *Instrumentation so callers that
// don't want metrics can simply not construct one.
type Instrumentation struct {
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	cellFailures *prometheus.CounterVec
}

// NewInstrumentation registers the batch metrics on reg and returns a
// handle for recording them. Registering the same Instrumentation twice
// on the same registry panics, matching prometheus/client_golang's own
// contract.
func NewInstrumentation(reg prometheus.Registerer) *Instrumentation {
	in := &Instrumentation{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alertsim",
			Name:      "runs_total",
			Help:      "Total simulation runs executed, by scenario and policy.",
		}, []string{"scenario", "policy"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "alertsim",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a single simulation run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"scenario", "policy"}),
		cellFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alertsim",
			Name:      "batch_cell_failures_total",
			Help:      "Batch cells and single runs that returned an error instead of a result.",
		}, []string{"stage"}),
	}
	reg.MustRegister(in.runsTotal, in.runDuration, in.cellFailures)
	return in
}

// ObserveRun records one completed run's duration and increments its
// counter.
func (in *Instrumentation) ObserveRun(scenario, policy string, durationSeconds float64) {
	if in == nil {
		return
	}
	in.runsTotal.WithLabelValues(scenario, policy).Inc()
	in.runDuration.WithLabelValues(scenario, policy).Observe(durationSeconds)
}

// ObserveCellFailure records a failed batch cell at the given stage
// (e.g. "replicated", "multiPolicy", "scan", "run").
func (in *Instrumentation) ObserveCellFailure(stage string) {
	if in == nil {
		return
	}
	in.cellFailures.WithLabelValues(stage).Inc()
}

// Observer bundles the side effects an orchestrator attaches to every
// run it executes: Prometheus instrumentation and a result sink (spec
// §6.4, §9.3). Both fields are optional; a nil *Observer, or one with
// both fields nil, makes wrap a pass-through.
type Observer struct {
	Instrumentation *Instrumentation
	Sink            Sink
}

// wrap decorates run with obs's side effects: it times the call into
// Instrumentation.ObserveRun, persists a RunRecord into Sink on
// success, and counts failures into Instrumentation.ObserveCellFailure
// under stage. A nil Observer, or one with a nil run, returns run
// unchanged.
func (obs *Observer) wrap(run RunFunc, stage string) RunFunc {
	if obs == nil || run == nil {
		return run
	}
	return func(o sim.RunOptions) (sim.RunResult, error) {
		start := time.Now()
		result, err := run(o)
		if err != nil {
			obs.Instrumentation.ObserveCellFailure(stage)
			return result, err
		}
		obs.Instrumentation.ObserveRun(o.ScenarioName, string(o.Policy), time.Since(start).Seconds())
		if obs.Sink != nil {
			record := NewRunRecord(uuid.New().String(), result, o.Policy, time.Now())
			record.BatchID = stage
			_ = obs.Sink.Put(context.Background(), record)
		}
		return result, err
	}
}
