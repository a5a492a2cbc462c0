// Package percentile converts raw metric values into population percentiles.
//
// The calculation is pure and stateless: callers pass the full population of
// counted observations for a metric and get back a percentile under the
// metric's direction convention. Degenerate inputs resolve to boundary
// values, never errors.
package percentile

import (
	"sort"
)

// Result describes where a value sits inside a population.
type Result struct {
	Percentile float64 // [0,100], share of the population the value beats or ties
	Rank       int     // 1-based, count of strictly better observations plus one; 0 for empty populations
	Total      int     // population size
	Value      float64 // the input value, echoed for callers assembling bundles
}

// Of locates target within population and returns its percentile.
//
// The population is sorted ascending internally; target is located by binary
// search. An exact member match uses the plain worse-or-equal count. A target
// strictly between two adjacent members interpolates linearly between the
// neighbors' implied percentiles, which avoids plateau artifacts on sparse
// continuous metrics. higherIsBetter=false mirrors the counting logic by
// reversing comparisons rather than reversing the sorted order.
func Of(population []float64, target float64, higherIsBetter bool) Result {
	n := len(population)
	if n == 0 {
		return Result{Percentile: 0, Rank: 0, Total: 0, Value: target}
	}

	sorted := make([]float64, n)
	copy(sorted, population)
	sort.Float64s(sorted)

	// lo = index of first member >= target, hi = index of first member > target.
	lo := sort.SearchFloat64s(sorted, target)
	hi := sort.Search(n, func(i int) bool { return sorted[i] > target })

	pct := percentileAt(sorted, lo, hi, target, higherIsBetter)
	return Result{
		Percentile: clamp(pct, 0, 100),
		Rank:       rankOf(sorted, lo, hi, higherIsBetter),
		Total:      n,
		Value:      target,
	}
}

// percentileAt computes the raw (unclamped) percentile for target given its
// binary-search bounds in the ascending sorted population.
func percentileAt(sorted []float64, lo, hi int, target float64, higherIsBetter bool) float64 {
	n := len(sorted)

	if lo != hi {
		// Exact match: worse-or-equal count over total, no interpolation.
		return exactPercentile(n, hi, lo, higherIsBetter)
	}

	// Out of range below or above: boundary values.
	if lo == 0 {
		if higherIsBetter {
			return 0
		}
		return 100
	}
	if lo == n {
		if higherIsBetter {
			return 100
		}
		return 0
	}

	// Strictly between sorted[lo-1] and sorted[lo]: interpolate between the
	// percentiles implied by the two neighbors.
	lower, upper := sorted[lo-1], sorted[lo]
	frac := (target - lower) / (upper - lower)
	pLower := memberPercentile(sorted, lower, higherIsBetter)
	pUpper := memberPercentile(sorted, upper, higherIsBetter)
	return pLower + frac*(pUpper-pLower)
}

// exactPercentile is the no-interpolation formula for a target that
// coincides with population members occupying [lo, hi) in sorted order.
func exactPercentile(n, hi, lo int, higherIsBetter bool) float64 {
	if higherIsBetter {
		// Members <= target are worse or equal.
		return float64(hi) / float64(n) * 100
	}
	// Members >= target are worse or equal.
	return float64(n-lo) / float64(n) * 100
}

// memberPercentile computes the exact-match percentile of a value known to
// be a population member.
func memberPercentile(sorted []float64, v float64, higherIsBetter bool) float64 {
	n := len(sorted)
	lo := sort.SearchFloat64s(sorted, v)
	hi := sort.Search(n, func(i int) bool { return sorted[i] > v })
	return exactPercentile(n, hi, lo, higherIsBetter)
}

// rankOf counts strictly better observations and adds one. For targets not
// in the population this is the insertion rank: a target worse than every
// member ranks len+1, one past the last member.
func rankOf(sorted []float64, lo, hi int, higherIsBetter bool) int {
	n := len(sorted)
	if higherIsBetter {
		// Strictly greater members are better.
		return (n - hi) + 1
	}
	// Strictly smaller members are better.
	return lo + 1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
