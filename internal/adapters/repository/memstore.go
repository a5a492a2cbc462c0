package repository

import (
	"context"
	"sync"

	"github.com/podiumlab/podium/internal/domain/model"
	"github.com/podiumlab/podium/pkg/metrics"
)

// MemStore is the in-memory Store and Writer. It holds the full population
// under a single RWMutex; reads copy out so callers never observe internal
// state mutating under them.
type MemStore struct {
	mu           sync.RWMutex
	metrics      map[string]model.MetricDefinition
	users        map[string]model.UserProfile
	observations map[string][]model.Observation // metric id -> observations
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		metrics:      make(map[string]model.MetricDefinition),
		users:        make(map[string]model.UserProfile),
		observations: make(map[string][]model.Observation),
	}
}

// PutMetric registers or replaces a metric definition.
func (s *MemStore) PutMetric(ctx context.Context, def model.MetricDefinition) error {
	s.mu.Lock()
	s.metrics[def.ID] = def
	s.mu.Unlock()
	return nil
}

// PutUser upserts a user profile.
func (s *MemStore) PutUser(ctx context.Context, u model.UserProfile) error {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	metrics.UpdateTotalUsers(s.userCount())
	return nil
}

// AddObservation appends one observation. Unknown metrics are rejected so
// direction-aware reductions stay well defined.
func (s *MemStore) AddObservation(ctx context.Context, obs model.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.metrics[obs.MetricID]; !ok {
		return ErrMetricNotFound
	}
	s.observations[obs.MetricID] = append(s.observations[obs.MetricID], obs)
	return nil
}

// MetricDefinitions returns every known metric.
func (s *MemStore) MetricDefinitions(ctx context.Context) ([]model.MetricDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.MetricDefinition, 0, len(s.metrics))
	for _, def := range s.metrics {
		out = append(out, def)
	}
	return out, nil
}

// Population returns the counted observation values for one metric.
func (s *MemStore) Population(ctx context.Context, metricID string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obs := s.observations[metricID]
	out := make([]float64, 0, len(obs))
	for _, o := range obs {
		if o.Counted {
			out = append(out, o.Value)
		}
	}
	return out, nil
}

// BestByMetric reduces the user's counted observations to the best value
// per metric, where "best" follows each metric's direction flag.
func (s *MemStore) BestByMetric(ctx context.Context, userID string) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best := make(map[string]float64)
	for metricID, obs := range s.observations {
		def, ok := s.metrics[metricID]
		if !ok {
			continue
		}
		for _, o := range obs {
			if !o.Counted || o.UserID != userID {
				continue
			}
			cur, seen := best[metricID]
			if !seen || better(def, o.Value, cur) {
				best[metricID] = o.Value
			}
		}
	}
	return best, nil
}

// ObservationCount returns how many counted observations the user has.
func (s *MemStore) ObservationCount(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, obs := range s.observations {
		for _, o := range obs {
			if o.Counted && o.UserID == userID {
				n++
			}
		}
	}
	return n, nil
}

// User returns one profile.
func (s *MemStore) User(ctx context.Context, userID string) (model.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return model.UserProfile{}, ErrUserNotFound
	}
	return u, nil
}

// Users returns all profiles.
func (s *MemStore) Users(ctx context.Context) ([]model.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.UserProfile, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *MemStore) userCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// better reports whether a beats b under the metric's direction.
func better(def model.MetricDefinition, a, b float64) bool {
	if def.HigherIsBetter {
		return a > b
	}
	return a < b
}
