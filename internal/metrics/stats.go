package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a series of per-frame measurements
type Stats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	P95    float64 `json:"p95" yaml:"p95"`
	P99    float64 `json:"p99" yaml:"p99"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Count  int     `json:"count" yaml:"count"`
}

// Summarize calculates statistical measures for a dataset
func Summarize(data []float64) *Stats {
	if len(data) == 0 {
		return &Stats{Count: 0}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mean, variance := stat.PopMeanVariance(sorted, nil)

	stats := &Stats{
		Count:  len(data),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: percentile(sorted, 50),
		P95:    percentile(sorted, 95),
		P99:    percentile(sorted, 99),
		Mean:   mean,
		StdDev: math.Sqrt(variance),
	}

	return sanitize(stats)
}

// sanitize replaces infinite and NaN values so the stats always serialize
func sanitize(stats *Stats) *Stats {
	for _, v := range []*float64{
		&stats.Mean, &stats.Median, &stats.P95, &stats.P99,
		&stats.Min, &stats.Max, &stats.StdDev,
	} {
		if math.IsInf(*v, 0) || math.IsNaN(*v) {
			*v = 0
		}
	}
	return stats
}

// percentile interpolates linearly between closest ranks of sorted data
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
