package dataprocessing

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// describe computes count, mean, sample std, min, quartiles and max, in the
// order of domain.DescribeStats. Without values every statistic but count is
// NaN. The standard deviation needs at least two values.
func describe(values []float64) []float64 {
	out := []float64{float64(len(values))}
	if len(values) == 0 {
		nan := math.NaN()
		return append(out, nan, nan, nan, nan, nan, nan, nan)
	}

	data := stats.Float64Data(values)
	mean, _ := stats.Mean(data)
	std := math.NaN()
	if len(values) > 1 {
		std, _ = stats.StandardDeviationSample(data)
	}
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return append(out,
		mean,
		std,
		lo,
		quantile(sorted, 0.25),
		quantile(sorted, 0.50),
		quantile(sorted, 0.75),
		hi,
	)
}

// quantile interpolates linearly between closest ranks (Hyndman and Fan type 7).
// sorted must be ascending and non-empty.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// round2 rounds half to even at two decimals. NaN passes through.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.RoundToEven(v*100) / 100
}

func round2All(vs []float64) []float64 {
	for i, v := range vs {
		vs[i] = round2(v)
	}
	return vs
}
