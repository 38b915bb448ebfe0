package cmd

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aware-eas/alertsim/sim"
	"github.com/aware-eas/alertsim/sim/batch"
	"github.com/aware-eas/alertsim/sim/engine"
)

var (
	batchScenario    string
	batchPolicy      string
	batchCacheSize   int
	batchAlerts      int
	batchReliability float64
	batchDuration    int64
	batchQPM         float64
	batchSeed        string
	batchReplicates  int
	batchSeedMode    string
	batchScanCount   int
	batchCSVPath     string
	batchMetricsAddr string
	batchRedisAddr   string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run batch orchestrations across replicates, policies, and profile sweeps",
}

func baseBatchOptions() (sim.RunOptions, error) {
	opts := sim.DefaultRunOptions()
	opts.ScenarioName = batchScenario
	opts.Policy = sim.PolicyName(batchPolicy)
	opts.CacheSize = batchCacheSize
	opts.TargetAlertCount = batchAlerts
	opts.BaselineReliability = batchReliability
	opts.HorizonSec = batchDuration
	opts.QueryRatePerMin = batchQPM
	opts.Seed = batchSeed
	return opts, opts.Validate()
}

// buildObserver wires per-cell Prometheus instrumentation and a result
// sink around every batch command (SPEC_FULL.md §9.3): MemorySink by
// default, RedisSink when --redis-addr is passed; instrumentation is
// exposed on --metrics-addr when set, otherwise it still records into
// an unscraped registry so ObserveRun/ObserveCellFailure are always
// exercised.
func buildObserver() *batch.Observer {
	reg := prometheus.NewRegistry()
	in := batch.NewInstrumentation(reg)
	if batchMetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			logrus.Infof("metrics listening on %s", batchMetricsAddr)
			if err := http.ListenAndServe(batchMetricsAddr, mux); err != nil {
				logrus.Warnf("metrics server stopped: %v", err)
			}
		}()
	}

	var sink batch.Sink = batch.NewMemorySink()
	if batchRedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: batchRedisAddr})
		sink = batch.NewRedisSink(client, "", 0)
	}

	return &batch.Observer{Instrumentation: in, Sink: sink}
}

func writeCSVOrStdout(name string, write func(f *os.File) error) {
	if batchCSVPath == "" {
		return
	}
	f, err := os.Create(batchCSVPath)
	if err != nil {
		logrus.Fatalf("cannot create %s CSV: %v", name, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		logrus.Fatalf("cannot write %s CSV: %v", name, err)
	}
}

var batchReplicatedCmd = &cobra.Command{
	Use:   "replicated",
	Short: "Run one configuration across N replicate seeds and aggregate its metrics",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		base, err := baseBatchOptions()
		if err != nil {
			logrus.Fatalf("invalid batch options: %v", err)
		}
		result, err := batch.RunReplicated(base, batchReplicates, batch.SeedMode(batchSeedMode), engine.RunSimulation, buildObserver())
		if err != nil {
			logrus.Fatalf("replicated batch failed: %v", err)
		}
		logrus.Infof("ran %d replicates with seed mode %s", len(result.Seeds), batchSeedMode)
		for key, agg := range result.Aggregate {
			logrus.Infof("  %-24s mean=%.4f stdev=%.4f", key, agg.Mean, agg.StdDev)
		}
	},
}

var batchMultiPolicyCmd = &cobra.Command{
	Use:   "multipolicy",
	Short: "Run one configuration under all four cache policies",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		base, err := baseBatchOptions()
		if err != nil {
			logrus.Fatalf("invalid batch options: %v", err)
		}
		result, err := batch.RunMultiPolicy(base, engine.RunSimulation, buildObserver())
		if err != nil {
			logrus.Fatalf("multi-policy batch failed: %v", err)
		}
		for _, cell := range result.Cells {
			logrus.Infof("  %-14s hitRate=%.4f deliveryRate=%.4f", cell.Policy, cell.Result.Metrics.CacheHitRate, cell.Result.Metrics.DeliveryRate)
		}
		writeCSVOrStdout("multipolicy", func(f *os.File) error {
			return batch.WriteMultiPolicyCSV(f, result)
		})
	},
}

var batchDeviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Sweep the standard device cache-size profile, each a multi-policy comparison",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		base, err := baseBatchOptions()
		if err != nil {
			logrus.Fatalf("invalid batch options: %v", err)
		}
		result, err := batch.RunDeviceComparison(base, engine.RunSimulation, buildObserver())
		if err != nil {
			logrus.Fatalf("device batch failed: %v", err)
		}
		writeCSVOrStdout("device", func(f *os.File) error {
			return batch.WriteDeviceCSV(f, result)
		})
		logrus.Infof("ran device comparison across cache sizes %v", result.CacheSizes)
	},
}

var batchNetworkCmd = &cobra.Command{
	Use:   "network",
	Short: "Sweep the standard network reliability profile, each a multi-policy comparison",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		base, err := baseBatchOptions()
		if err != nil {
			logrus.Fatalf("invalid batch options: %v", err)
		}
		result, err := batch.RunNetworkComparison(base, engine.RunSimulation, buildObserver())
		if err != nil {
			logrus.Fatalf("network batch failed: %v", err)
		}
		writeCSVOrStdout("network", func(f *os.File) error {
			return batch.WriteNetworkCSV(f, result)
		})
		logrus.Infof("ran network comparison across reliabilities %v", result.Reliabilities)
	},
}

var batchCombinedCmd = &cobra.Command{
	Use:   "combined",
	Short: "Run the full device x network x policy grid",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		base, err := baseBatchOptions()
		if err != nil {
			logrus.Fatalf("invalid batch options: %v", err)
		}
		result, err := batch.RunCombinedComparison(base, engine.RunSimulation, buildObserver())
		if err != nil {
			logrus.Fatalf("combined batch failed: %v", err)
		}
		writeCSVOrStdout("combined", func(f *os.File) error {
			return batch.WriteCombinedCSV(f, result)
		})
		logrus.Infof("ran combined comparison: %d cache sizes x %d reliabilities", len(result.CacheSizes), len(result.Reliabilities))
	},
}

var batchScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a randomized scan of N simulation configurations",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		result, err := batch.RunRandomizedScan(batchScanCount, batchSeed, engine.RunSimulation, buildObserver())
		if err != nil {
			logrus.Fatalf("randomized scan failed: %v", err)
		}
		logrus.Infof("ran %d randomized cells", len(result.Results))
		for i, r := range result.Results {
			logrus.Infof("  cell %d: scenario=%s policy=%s hitRate=%.4f", i, r.Scenario, result.Options[i].Policy, r.Metrics.CacheHitRate)
		}
	},
}

func registerBaseBatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&batchScenario, "scenario", "Urban", "Scenario name (Urban, Suburban, Rural)")
	cmd.Flags().StringVar(&batchPolicy, "policy", "PriorityFresh", "Cache policy (ignored by multipolicy/device/network/combined)")
	cmd.Flags().IntVar(&batchCacheSize, "cache", 128, "Cache capacity")
	cmd.Flags().IntVar(&batchAlerts, "alerts", 400, "Target alert count")
	cmd.Flags().Float64Var(&batchReliability, "reliability", 0.85, "Baseline delivery reliability")
	cmd.Flags().Int64Var(&batchDuration, "duration", 900, "Run horizon in seconds")
	cmd.Flags().Float64Var(&batchQPM, "qpm", 60, "Query rate per minute")
	cmd.Flags().StringVar(&batchSeed, "seed", "demo", "Base seed string")
	cmd.Flags().StringVar(&batchCSVPath, "csv", "", "Write the result to this CSV path")
	cmd.Flags().StringVar(&batchMetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().StringVar(&batchRedisAddr, "redis-addr", "", "Persist run records to this Redis address instead of in-memory")
}

func init() {
	registerBaseBatchFlags(batchReplicatedCmd)
	batchReplicatedCmd.Flags().IntVar(&batchReplicates, "replicates", 5, "Number of replicate seeds")
	batchReplicatedCmd.Flags().StringVar(&batchSeedMode, "seed-mode", string(batch.SeedDeterministicJitter), "Seed derivation mode (Fixed, DeterministicJitter, Randomized)")

	registerBaseBatchFlags(batchMultiPolicyCmd)
	registerBaseBatchFlags(batchDeviceCmd)
	registerBaseBatchFlags(batchNetworkCmd)
	registerBaseBatchFlags(batchCombinedCmd)

	batchScanCmd.Flags().StringVar(&batchSeed, "seed", "demo", "Base seed string for the scan's option stream")
	batchScanCmd.Flags().IntVar(&batchScanCount, "n", 20, "Number of randomized configurations to run")
	batchScanCmd.Flags().StringVar(&batchMetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")
	batchScanCmd.Flags().StringVar(&batchRedisAddr, "redis-addr", "", "Persist run records to this Redis address instead of in-memory")

	batchCmd.AddCommand(batchReplicatedCmd, batchMultiPolicyCmd, batchDeviceCmd, batchNetworkCmd, batchCombinedCmd, batchScanCmd)
}
