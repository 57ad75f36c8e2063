package metrics

import (
	"sort"
)

// Percentile returns the p-th quantile of values (0.99 = 99th percentile)
// using linear interpolation between closest ranks.
// values does not need to be sorted and is not modified.
func Percentile(values []float64, p float64) float64 {
	sorted := sortedCopy(values)
	return computePercentile(sorted, p)
}

// Quantiles returns one quantile per p, sorting values once.
func Quantiles(values []float64, ps ...float64) []float64 {
	sorted := sortedCopy(values)
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = computePercentile(sorted, p)
	}
	return out
}

// Max returns the largest value, 0 for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Mean calculates the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the 50th percentile.
func Median(values []float64) float64 {
	return Percentile(values, 0.50)
}

// Mode returns the most frequent non-empty string.
// Ties resolve to the lexicographically smallest value.
// ok is false when there is no non-empty value.
func Mode(values []string) (mode string, ok bool) {
	counts := make(map[string]int)
	for _, v := range values {
		if v == "" {
			continue
		}
		counts[v]++
	}
	if len(counts) == 0 {
		return "", false
	}

	best := 0
	for v, n := range counts {
		if n > best || (n == best && v < mode) {
			mode = v
			best = n
		}
	}
	return mode, true
}

// FirstMostFrequent returns the most frequent value and its count.
// Ties resolve to the value seen first in input order.
func FirstMostFrequent(values []string) (string, int) {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	var best string
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best, bestCount
}

// sortedCopy returns an ascending copy of values.
func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile (0.10 = 10th percentile).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	// Index for percentile (0-based, continuous)
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	// Linear interpolation
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
