package sim

// WeatherRecord holds per-region synthesized weather statistics used by
// the PF model's feature vector (spec §3, §4.4).
type WeatherRecord struct {
	FloodFrequency     float64
	RainfallMeanMM     float64
	RainfallVolatility float64
	DrainageScore      float64
	ShelterDemandIndex float64
}

// AnomalyRecord holds per-region synthesized forecast-accuracy history
// used by the PF model's feature vector (spec §3, §4.4).
type AnomalyRecord struct {
	FalseAlarmRate          float64
	LastMinuteDiversionRate float64
	HistoricalAccuracy      float64
	TypicalLeadTimeSec      float64
	UnderestimationRate     float64
	OverestimationRate      float64
	AccuracyTrend           float64
}

// GenerateWeatherHistory synthesizes one WeatherRecord per region from an
// RNG stream forked with the "weather" label. Draw order per region is
// fixed: flood_frequency, rainfall_mean, rainfall_volatility,
// drainage_score, shelter_demand — so outputs are reproducible given a
// seed (spec §4.4).
func GenerateWeatherHistory(seed string, env *Environment) map[string]WeatherRecord {
	rng := NewForkedRNG(seed, "weather")
	out := make(map[string]WeatherRecord, len(env.Regions))

	for _, r := range env.Regions {
		severityBias := regionSeverityBias(r.Severity)

		floodFreq := clip(0, 1, 0.25+severityBias+noise(rng, 0.15))
		rainfallMean := clip(10, 160, 80+noise(rng, 20)+floodFreq*45)
		rainfallVol := clip(0, 1, 0.3+noise(rng, 0.1)+severityBias*0.3)
		drainage := clip(0, 1, 0.5+(r.LocalFactor-1)*0.4+noise(rng, 0.1))
		shelterDemand := clip(0, 1, 0.35+floodFreq*0.5+noise(rng, 0.1))

		out[r.ID] = WeatherRecord{
			FloodFrequency:     floodFreq,
			RainfallMeanMM:     rainfallMean,
			RainfallVolatility: rainfallVol,
			DrainageScore:      drainage,
			ShelterDemandIndex: shelterDemand,
		}
	}
	return out
}

// GenerateAnomalyHistory synthesizes one AnomalyRecord per region from an
// RNG stream forked with the "anomaly" label (spec §4.4).
func GenerateAnomalyHistory(seed string, env *Environment) map[string]AnomalyRecord {
	rng := NewForkedRNG(seed, "anomaly")
	out := make(map[string]AnomalyRecord, len(env.Regions))

	for _, r := range env.Regions {
		baseAccuracy := clip(0, 1, 0.65+(r.LocalFactor-1)*0.15+noise(rng, 0.1))

		falseAlarm := clip(0, 1, (1-baseAccuracy)*0.6+noise(rng, 0.08))
		diversion := 0.0
		if rng.Next() < 0.3 {
			diversion = 0.15 + noise(rng, 0.05)
		}
		diversion = clip(0, 1, diversion)

		historicalAccuracy := clip(0, 1, baseAccuracy-0.3*falseAlarm-0.2*diversion)

		severityBias := regionSeverityBias(r.Severity)
		leadTime := clip(60, 7200, 900+severityBias*900+noise(rng, 200))

		underest := clip(0, 1, 0.2+noise(rng, 0.1))
		overest := clip(0, 1, 0.2+noise(rng, 0.1))

		trend := 1.0 + noise(rng, 0.05)
		switch {
		case rng.Next() < 0.15:
			trend = clip(1.1, 1.25, trend+0.1)
		case rng.Next() < 0.15:
			trend = clip(0.75, 0.9, trend-0.1)
		}

		out[r.ID] = AnomalyRecord{
			FalseAlarmRate:          falseAlarm,
			LastMinuteDiversionRate: diversion,
			HistoricalAccuracy:      historicalAccuracy,
			TypicalLeadTimeSec:      leadTime,
			UnderestimationRate:     underest,
			OverestimationRate:      overest,
			AccuracyTrend:           trend,
		}
	}
	return out
}

// noise draws a single zero-mean Gaussian perturbation with the given
// standard deviation, consuming a Box-Muller pair of uniforms from rng.
func noise(rng *RNG, stdDev float64) float64 {
	return NormalSample(rng, 0, stdDev)
}

func regionSeverityBias(s RegionSeverity) float64 {
	switch s {
	case RegionSeverityExtreme:
		return 0.3
	case RegionSeveritySevere:
		return 0.15
	default:
		return 0
	}
}
