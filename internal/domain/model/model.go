// Package model contains domain models passed between layers.
package model

import "time"

// Observation represents one recorded metric value for one athlete.
// Only counted observations participate in percentile populations.
type Observation struct {
	UserID   string    // subject/athlete identifier
	MetricID string    // metric identifier, e.g. "sprint_40m"
	Value    float64   // raw recorded value
	Counted  bool      // approved for ranking inclusion
	At       time.Time // recording timestamp
}

// MetricDefinition describes a single performance metric.
type MetricDefinition struct {
	ID             string
	ClassID        string       // specialization class the metric belongs to
	HigherIsBetter bool         // direction convention for percentile math
	Breakpoints    []Breakpoint // optional named value->percentile table
}

// Breakpoint is one row of a metric's optional breakpoint table.
// Tables are kept ascending by value.
type Breakpoint struct {
	Label   string  // display label, e.g. "elite"
	Value   float64 // raw metric value at this breakpoint
	Percent float64 // implied percentile in [0,100]
}

// UserProfile mirrors the consumed user profile contract.
type UserProfile struct {
	ID             string
	DisplayName    string
	DateOfBirth    time.Time
	Gender         string
	HeightCm       float64
	WeightKg       float64
	PrimaryClassID string
	GymID          string
	State          string
	City           string
}

// Onboarded reports whether the profile carries the fields leaderboards
// require: a display name, a birth date and a gender.
func (u UserProfile) Onboarded() bool {
	return u.DisplayName != "" && !u.DateOfBirth.IsZero() && u.Gender != ""
}

// AgeAt returns the whole-year age at the given instant, or 0 when the
// birth date is unset.
func (u UserProfile) AgeAt(now time.Time) int {
	if u.DateOfBirth.IsZero() {
		return 0
	}
	years := now.Year() - u.DateOfBirth.Year()
	// Not yet had the birthday this year.
	if now.YearDay() < u.DateOfBirth.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// BMI returns the body mass index (kg over squared height in meters),
// or 0 when height or weight is missing.
func (u UserProfile) BMI() float64 {
	if u.HeightCm <= 0 || u.WeightKg <= 0 {
		return 0
	}
	m := u.HeightCm / 100
	return u.WeightKg / (m * m)
}

// RatingBundle is a user's fully computed rating state. Bundles are pure
// functions of the population snapshot; they are cached, never persisted.
type RatingBundle struct {
	UserID           string             `json:"user_id"`
	OverallRating    float64            `json:"overall_rating"`
	Tier             string             `json:"tier"`
	ClassRatings     map[string]float64 `json:"class_ratings"`
	Percentiles      map[string]float64 `json:"percentiles"` // metric id -> percentile [0,100]
	ObservationCount int                `json:"observation_count"`
	ComputedAt       time.Time          `json:"computed_at"`

	// StandardPercentiles holds table-implied percentiles for metrics that
	// carry a breakpoint table, keyed by metric id. They contextualize a
	// value against known standards for display; the canonical
	// population-based Percentiles drive ratings.
	StandardPercentiles map[string]float64 `json:"standard_percentiles,omitempty"`
}
