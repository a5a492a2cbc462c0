// Package leaderboard builds filtered, deterministically ordered,
// paginated rankings on top of the population store and the rating cache.
package leaderboard

import (
	"strings"
)

// Facet is the primary grouping axis of a leaderboard query.
type Facet string

// Enumerated facets. Anything else parses to FacetOverall.
const (
	FacetOverall Facet = "overall"
	FacetClass   Facet = "class"
	FacetGym     Facet = "gym"
	FacetState   Facet = "state"
	FacetCity    Facet = "city"
	FacetAge     Facet = "age"
)

// ParseFacet maps a raw query value onto the enumerated facets. Unknown or
// empty values fall back to overall; a facet whose required parameter is
// missing later resolves to an empty candidate set rather than an error.
func ParseFacet(s string) Facet {
	switch Facet(strings.ToLower(strings.TrimSpace(s))) {
	case FacetClass:
		return FacetClass
	case FacetGym:
		return FacetGym
	case FacetState:
		return FacetState
	case FacetCity:
		return FacetCity
	case FacetAge:
		return FacetAge
	default:
		return FacetOverall
	}
}

// Query is a fully typed leaderboard request. It replaces ad-hoc predicate
// maps: each facet carries its own parameters and the whole struct is
// validated once at the request boundary via Normalize.
type Query struct {
	Facet Facet

	// Facet parameters, also usable as secondary filters.
	ClassID string
	GymID   string
	State   string
	City    string
	Age     int // exact age; 0 = unset
	AgeMin  int // 0 = unset
	AgeMax  int // 0 = unset

	// Secondary filters.
	SearchName string // case-insensitive substring on display name

	// Pagination: either Offset or JumpToRank (rank-centered page).
	Limit      int
	Offset     int
	JumpToRank int // 1-based; 0 = offset mode
}

// Normalize clamps malformed values into valid ranges. Bad input degrades,
// it never errors: negative numbers reset to zero, limits snap into
// [1, maxLimit], and inverted age ranges are dropped.
func (q *Query) Normalize(defaultLimit, maxLimit int) {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.JumpToRank < 0 {
		q.JumpToRank = 0
	}
	if q.Age < 0 {
		q.Age = 0
	}
	if q.AgeMin < 0 {
		q.AgeMin = 0
	}
	if q.AgeMax < 0 {
		q.AgeMax = 0
	}
	if q.AgeMin > 0 && q.AgeMax > 0 && q.AgeMin > q.AgeMax {
		q.AgeMin, q.AgeMax = 0, 0
	}
	q.ClassID = strings.TrimSpace(q.ClassID)
	q.GymID = strings.TrimSpace(q.GymID)
	q.State = strings.TrimSpace(q.State)
	q.City = strings.TrimSpace(q.City)
	q.SearchName = strings.TrimSpace(q.SearchName)
}

// hasAgeFilter reports whether any age parameter is set.
func (q Query) hasAgeFilter() bool {
	return q.Age > 0 || q.AgeMin > 0 || q.AgeMax > 0
}

// matchAge applies the exact-age and age-range filters.
func (q Query) matchAge(age int) bool {
	if q.Age > 0 && age != q.Age {
		return false
	}
	if q.AgeMin > 0 && age < q.AgeMin {
		return false
	}
	if q.AgeMax > 0 && age > q.AgeMax {
		return false
	}
	return true
}
