package batch

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/aware-eas/alertsim/sim"
)

// WriteTimelineCSV exports a single run's per-second timeline (spec
// §6.5 "Single-run timeline").
func WriteTimelineCSV(w io.Writer, timeline []sim.Sample) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"time", "cacheSize", "hits", "misses", "hitRate"}); err != nil {
		return err
	}
	for _, s := range timeline {
		hitRate := 0.0
		if total := s.Hits + s.Misses; total > 0 {
			hitRate = float64(s.Hits) / float64(total)
		}
		row := []string{
			strconv.FormatInt(s.T, 10),
			strconv.Itoa(s.CacheSize),
			strconv.FormatInt(s.Hits, 10),
			strconv.FormatInt(s.Misses, 10),
			strconv.FormatFloat(hitRate, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func metricRow(m sim.FinalMetrics) []string {
	return []string{
		strconv.FormatFloat(m.CacheHitRate, 'f', -1, 64),
		strconv.FormatFloat(m.DeliveryRate, 'f', -1, 64),
		strconv.FormatFloat(m.AvgFreshness, 'f', -1, 64),
		strconv.FormatFloat(m.StaleAccessRate, 'f', -1, 64),
		strconv.FormatFloat(m.RedundancyIndex, 'f', -1, 64),
		strconv.FormatFloat(m.ActionabilityFirstRatio, 'f', -1, 64),
		strconv.FormatFloat(m.TimelinessConsistency, 'f', -1, 64),
		strconv.Itoa(m.PushesSent),
		strconv.FormatFloat(m.PushSuppressRate, 'f', -1, 64),
		strconv.FormatFloat(m.PushDuplicateRate, 'f', -1, 64),
		strconv.FormatFloat(m.PushTimelyFirstRatio, 'f', -1, 64),
	}
}

var metricColumns = []string{
	"cacheHitRate", "deliveryRate", "avgFreshness", "staleAccessRate",
	"redundancyIndex", "actionabilityFirstRatio", "timelinessConsistency",
	"pushesSent", "pushSuppressRate", "pushDuplicateRate", "pushTimelyFirstRatio",
}

func multiPolicyRow(base sim.RunOptions, policy sim.PolicyName, seed string, m sim.FinalMetrics) []string {
	row := []string{
		string(policy),
		seed,
		base.ScenarioName,
		strconv.Itoa(base.CacheSize),
		strconv.Itoa(base.TargetAlertCount),
		strconv.FormatFloat(base.BaselineReliability, 'f', -1, 64),
		strconv.FormatInt(base.HorizonSec, 10),
		strconv.FormatFloat(base.QueryRatePerMin, 'f', -1, 64),
	}
	return append(row, metricRow(m)...)
}

// WriteMultiPolicyCSV exports a multi-policy comparison, one row per
// policy (spec §6.5 "Multi-policy row").
func WriteMultiPolicyCSV(w io.Writer, mp MultiPolicyResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{
		"policy", "seed", "scenario", "cacheSize", "alerts", "reliability", "durationSec", "queryRatePerMin",
	}, metricColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, cell := range mp.Cells {
		row := multiPolicyRow(mp.Base, cell.Policy, mp.Seed, cell.Result.Metrics)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteDeviceCSV exports a device comparison: every multi-policy row
// prefixed with the swept cache size (spec §6.5 "Device ... rows prepend
// device,").
func WriteDeviceCSV(w io.Writer, d DeviceResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{"device",
		"policy", "seed", "scenario", "cacheSize", "alerts", "reliability", "durationSec", "queryRatePerMin",
	}, metricColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, mp := range d.Cells {
		deviceLabel := strconv.Itoa(d.CacheSizes[i])
		for _, cell := range mp.Cells {
			row := append([]string{deviceLabel}, multiPolicyRow(mp.Base, cell.Policy, mp.Seed, cell.Result.Metrics)...)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteNetworkCSV exports a network comparison: every multi-policy row
// prefixed with the swept reliability.
func WriteNetworkCSV(w io.Writer, n NetworkResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{"network",
		"policy", "seed", "scenario", "cacheSize", "alerts", "reliability", "durationSec", "queryRatePerMin",
	}, metricColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, mp := range n.Cells {
		networkLabel := strconv.FormatFloat(n.Reliabilities[i], 'f', -1, 64)
		for _, cell := range mp.Cells {
			row := append([]string{networkLabel}, multiPolicyRow(mp.Base, cell.Policy, mp.Seed, cell.Result.Metrics)...)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteCombinedCSV exports a combined device x network comparison: every
// multi-policy row prefixed with both swept values.
func WriteCombinedCSV(w io.Writer, c CombinedResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{"device", "network",
		"policy", "seed", "scenario", "cacheSize", "alerts", "reliability", "durationSec", "queryRatePerMin",
	}, metricColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for di, row := range c.Cells {
		deviceLabel := strconv.Itoa(c.CacheSizes[di])
		for ni, mp := range row {
			networkLabel := strconv.FormatFloat(c.Reliabilities[ni], 'f', -1, 64)
			for _, cell := range mp.Cells {
				r := append([]string{deviceLabel, networkLabel}, multiPolicyRow(mp.Base, cell.Policy, mp.Seed, cell.Result.Metrics)...)
				if err := cw.Write(r); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
