// Package rating maps percentiles onto the numeric rating scale and the
// named tier ladder used for display.
package rating

import (
	"math"
)

// Rating scale constants. These are fixed configuration, not runtime state.
const (
	// Floor is the rating assigned to any class without qualifying
	// observations and the exact image of percentile zero.
	Floor = 100.0

	// Ceiling is the rating at the 100th percentile.
	Ceiling = 3000.0

	// curveExponent keeps the percentile->rating curve convex: gains
	// accelerate near the top of the distribution and compress near the
	// bottom.
	curveExponent = 1.5
)

// FromPercentile converts a percentile fraction in [0,1] to a rating in
// [Floor, Ceiling]. Inputs at or below zero map exactly to Floor; inputs
// above one are treated as one.
func FromPercentile(p float64) float64 {
	if p <= 0 || math.IsNaN(p) {
		return Floor
	}
	if p > 1 {
		p = 1
	}
	return Floor + (Ceiling-Floor)*math.Pow(p, curveExponent)
}

// ForClass derives a class rating from the user's percentile fractions
// across that class's metrics: the mean percentile passed through the
// curve. An empty list means no participation and returns Floor exactly.
func ForClass(percentiles []float64) float64 {
	if len(percentiles) == 0 {
		return Floor
	}
	var sum float64
	for _, p := range percentiles {
		sum += p
	}
	return FromPercentile(sum / float64(len(percentiles)))
}

// Overall averages the class ratings of classes with actual participation,
// i.e. those strictly above Floor. Without any qualifying class the overall
// rating is Floor.
func Overall(classRatings map[string]float64) float64 {
	var sum float64
	var n int
	for _, r := range classRatings {
		if r > Floor {
			sum += r
			n++
		}
	}
	if n == 0 {
		return Floor
	}
	return sum / float64(n)
}
