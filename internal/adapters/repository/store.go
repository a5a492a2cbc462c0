// Package repository defines the population store contract and errors.
//
// The store is the service's single external collaborator for raw data:
// metric definitions, counted observations and user profiles. The rating
// and leaderboard layers only read from it; ingestion endpoints write
// through the concrete implementations.
package repository

import (
	"context"

	"github.com/podiumlab/podium/internal/domain/model"
)

// Store provides read access to the population snapshot.
type Store interface {
	// MetricDefinitions returns every known metric.
	MetricDefinitions(ctx context.Context) ([]model.MetricDefinition, error)

	// Population returns the counted observation values for one metric.
	// Unknown metrics yield an empty slice, not an error.
	Population(ctx context.Context, metricID string) ([]float64, error)

	// BestByMetric reduces a user's counted observations to the best value
	// per metric, honoring each metric's direction. Implementations may
	// compute this in memory or push it down (e.g. SQL DISTINCT ON).
	BestByMetric(ctx context.Context, userID string) (map[string]float64, error)

	// ObservationCount returns how many counted observations the user has.
	ObservationCount(ctx context.Context, userID string) (int, error)

	// User returns one profile. Returns ErrUserNotFound for unknown ids.
	User(ctx context.Context, userID string) (model.UserProfile, error)

	// Users returns all profiles, onboarded or not; leaderboard filtering
	// happens in the ranker.
	Users(ctx context.Context) ([]model.UserProfile, error)
}

// Writer is the write side implemented by stores that accept ingestion.
type Writer interface {
	PutMetric(ctx context.Context, def model.MetricDefinition) error
	PutUser(ctx context.Context, u model.UserProfile) error
	AddObservation(ctx context.Context, obs model.Observation) error
}
