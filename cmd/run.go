package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aware-eas/alertsim/sim"
	"github.com/aware-eas/alertsim/sim/batch"
	"github.com/aware-eas/alertsim/sim/engine"
)

var (
	runScenario      string
	runPolicy        string
	runCacheSize     int
	runAlerts        int
	runReliability   float64
	runDuration      int64
	runQPM           float64
	runSeed          string
	runUsePF         bool
	runPushRate      float64
	runPushDedup     int64
	runPushTau       float64
	runRetryInterval int64
	runRetryAttempts int

	runConfigPath  string
	runTimelineCSV string
	runMetricsAddr string
	runRedisAddr   string
)

// buildRunObserver mirrors cmd/batch.go's buildObserver for the single-run
// path: a Prometheus registry + Instrumentation, scraped over
// --metrics-addr when set, plus a MemorySink (or RedisSink when
// --redis-addr is passed) that a solitary `run` invocation can still
// persist its one RunRecord into.
func buildRunObserver() *batch.Observer {
	reg := prometheus.NewRegistry()
	in := batch.NewInstrumentation(reg)
	if runMetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			logrus.Infof("metrics listening on %s", runMetricsAddr)
			if srvErr := http.ListenAndServe(runMetricsAddr, mux); srvErr != nil {
				logrus.Warnf("metrics server stopped: %v", srvErr)
			}
		}()
	}

	var sink batch.Sink = batch.NewMemorySink()
	if runRedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: runRedisAddr})
		sink = batch.NewRedisSink(client, "", 0)
	}

	return &batch.Observer{Instrumentation: in, Sink: sink}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		opts, err := buildRunOptions()
		if err != nil {
			logrus.Fatalf("invalid run options: %v", err)
		}

		obs := buildRunObserver()

		logrus.Infof("starting run scenario=%s policy=%s seed=%s cache=%d alerts=%d",
			opts.ScenarioName, opts.Policy, opts.Seed, opts.CacheSize, opts.TargetAlertCount)

		start := time.Now()
		result, err := engine.RunSimulation(opts)
		if err != nil {
			obs.Instrumentation.ObserveCellFailure("run")
			logrus.Fatalf("simulation failed: %v", err)
		}
		obs.Instrumentation.ObserveRun(opts.ScenarioName, string(opts.Policy), time.Since(start).Seconds())
		if obs.Sink != nil {
			record := batch.NewRunRecord(uuid.New().String(), result, opts.Policy, time.Now())
			if putErr := obs.Sink.Put(context.Background(), record); putErr != nil {
				logrus.Warnf("failed to persist run record: %v", putErr)
			}
		}

		printSummary(result)

		if runTimelineCSV != "" {
			f, ferr := os.Create(runTimelineCSV)
			if ferr != nil {
				logrus.Fatalf("cannot create timeline CSV: %v", ferr)
			}
			defer f.Close()
			if werr := batch.WriteTimelineCSV(f, result.Timeline); werr != nil {
				logrus.Fatalf("cannot write timeline CSV: %v", werr)
			}
		}
	},
}

// runOptionsFile mirrors sim.RunOptions for YAML config loading; fields
// left at their zero value in the file fall through to DefaultRunOptions.
type runOptionsFile struct {
	Scenario            string  `yaml:"scenario"`
	Policy              string  `yaml:"policy"`
	CacheSize           int     `yaml:"cacheSize"`
	TargetAlertCount    int     `yaml:"targetAlertCount"`
	BaselineReliability float64 `yaml:"baselineReliability"`
	HorizonSec          int64   `yaml:"horizonSec"`
	QueryRatePerMin     float64 `yaml:"queryRatePerMin"`
	Seed                string  `yaml:"seed"`

	PF struct {
		UsePF           bool    `yaml:"usePF"`
		SeverityWeight  float64 `yaml:"severityWeight"`
		UrgencyWeight   float64 `yaml:"urgencyWeight"`
		FreshnessWeight float64 `yaml:"freshnessWeight"`
	} `yaml:"pf"`

	Push struct {
		RateLimitPerMin float64 `yaml:"rateLimitPerMin"`
		DedupWindowSec  int64   `yaml:"dedupWindowSec"`
		Threshold       float64 `yaml:"threshold"`
	} `yaml:"push"`
}

func buildRunOptions() (sim.RunOptions, error) {
	opts := sim.DefaultRunOptions()

	if runConfigPath != "" {
		raw, err := os.ReadFile(runConfigPath)
		if err != nil {
			return opts, fmt.Errorf("reading config: %w", err)
		}
		var cfg runOptionsFile
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return opts, fmt.Errorf("parsing config: %w", err)
		}
		opts.ScenarioName = cfg.Scenario
		if cfg.Policy != "" {
			opts.Policy = sim.PolicyName(cfg.Policy)
		}
		opts.CacheSize = cfg.CacheSize
		opts.TargetAlertCount = cfg.TargetAlertCount
		opts.BaselineReliability = cfg.BaselineReliability
		opts.HorizonSec = cfg.HorizonSec
		opts.QueryRatePerMin = cfg.QueryRatePerMin
		opts.Seed = cfg.Seed
		opts.PF.UsePF = cfg.PF.UsePF
		if cfg.PF.SeverityWeight > 0 {
			opts.PF.SeverityWeight = cfg.PF.SeverityWeight
		}
		if cfg.PF.UrgencyWeight > 0 {
			opts.PF.UrgencyWeight = cfg.PF.UrgencyWeight
		}
		if cfg.PF.FreshnessWeight > 0 {
			opts.PF.FreshnessWeight = cfg.PF.FreshnessWeight
		}
		opts.Push.RateLimitPerMin = cfg.Push.RateLimitPerMin
		opts.Push.DedupWindowSec = cfg.Push.DedupWindowSec
		opts.Push.Threshold = cfg.Push.Threshold
		return opts, opts.Validate()
	}

	opts.ScenarioName = runScenario
	opts.Policy = sim.PolicyName(runPolicy)
	opts.CacheSize = runCacheSize
	opts.TargetAlertCount = runAlerts
	opts.BaselineReliability = runReliability
	opts.HorizonSec = runDuration
	opts.QueryRatePerMin = runQPM
	opts.Seed = runSeed
	opts.PF.UsePF = runUsePF
	opts.Push.RateLimitPerMin = runPushRate
	opts.Push.DedupWindowSec = runPushDedup
	opts.Push.Threshold = runPushTau
	opts.Delivery.RetryIntervalSec = runRetryInterval
	opts.Delivery.MaxAttempts = runRetryAttempts

	return opts, opts.Validate()
}

func printSummary(r sim.RunResult) {
	m := r.Metrics
	fmt.Printf("scenario=%s seed=%s regions=%d\n", r.Scenario, r.Seed, len(r.Environment.Regions))
	fmt.Printf("cacheHitRate=%.4f deliveryRate=%.4f avgFreshness=%.4f staleAccessRate=%.4f\n",
		m.CacheHitRate, m.DeliveryRate, m.AvgFreshness, m.StaleAccessRate)
	fmt.Printf("redundancyIndex=%.4f actionabilityFirstRatio=%.4f timelinessConsistency=%.4f\n",
		m.RedundancyIndex, m.ActionabilityFirstRatio, m.TimelinessConsistency)
	fmt.Printf("pushesSent=%d pushSuppressRate=%.4f pushDuplicateRate=%.4f pushTimelyFirstRatio=%.4f\n",
		m.PushesSent, m.PushSuppressRate, m.PushDuplicateRate, m.PushTimelyFirstRatio)
}

func init() {
	runCmd.Flags().StringVar(&runScenario, "scenario", "Urban", "Scenario name (Urban, Suburban, Rural)")
	runCmd.Flags().StringVar(&runPolicy, "policy", "PriorityFresh", "Cache policy (LRU, TTLOnly, PriorityFresh, PAFTinyLFU)")
	runCmd.Flags().IntVar(&runCacheSize, "cache", 128, "Cache capacity")
	runCmd.Flags().IntVar(&runAlerts, "alerts", 400, "Target alert count")
	runCmd.Flags().Float64Var(&runReliability, "reliability", 0.85, "Baseline delivery reliability")
	runCmd.Flags().Int64Var(&runDuration, "duration", 900, "Run horizon in seconds")
	runCmd.Flags().Float64Var(&runQPM, "qpm", 60, "Query rate per minute")
	runCmd.Flags().StringVar(&runSeed, "seed", "demo", "Deterministic seed string")
	runCmd.Flags().BoolVar(&runUsePF, "pf", false, "Attach the PF model to PriorityFresh")
	runCmd.Flags().Float64Var(&runPushRate, "push-rate", 0, "Push rate limit per minute (0 disables pushes)")
	runCmd.Flags().Int64Var(&runPushDedup, "push-dedup", 60, "Push dedup window in seconds")
	runCmd.Flags().Float64Var(&runPushTau, "push-threshold", 0.9, "Push probability threshold")
	runCmd.Flags().Int64Var(&runRetryInterval, "retry-interval", 30, "Delivery retry interval in seconds")
	runCmd.Flags().IntVar(&runRetryAttempts, "retry-attempts", 1, "Maximum delivery attempts")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Load RunOptions from a YAML file instead of flags")
	runCmd.Flags().StringVar(&runTimelineCSV, "timeline-csv", "", "Write the per-second timeline to this CSV path")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")
	runCmd.Flags().StringVar(&runRedisAddr, "redis-addr", "", "Persist the run's record to this Redis address instead of in-memory")
}
