// Package app provides the core business service that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/podiumlab/podium/internal/adapters/repository"
	"github.com/podiumlab/podium/internal/cache"
	"github.com/podiumlab/podium/internal/domain/leaderboard"
	"github.com/podiumlab/podium/internal/domain/model"
	"github.com/podiumlab/podium/pkg/logger"
)

// Service wires the population store, the bundle cache and the ranker into
// the operations the HTTP layer consumes.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	writer repository.Writer
	cache  cache.Cache
	ranker *leaderboard.Ranker

	workers         int
	defaultPageSize int
	maxPageSize     int

	started bool
	log     logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the population store. Stores that also implement
// repository.Writer get ingestion endpoints wired automatically.
func WithStore(s repository.Store) Option {
	return func(svc *Service) {
		if s != nil {
			svc.store = s
			if w, ok := s.(repository.Writer); ok {
				svc.writer = w
			}
		}
	}
}

// WithCache injects the bundle cache implementation.
func WithCache(c cache.Cache) Option {
	return func(svc *Service) {
		if c != nil {
			svc.cache = c
		}
	}
}

// WithWorkers bounds the per-query rating fan-out.
func WithWorkers(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.workers = n
		}
	}
}

// WithPageSizes sets the default and maximum leaderboard page sizes.
func WithPageSizes(def, max int) Option {
	return func(svc *Service) {
		if def > 0 {
			svc.defaultPageSize = def
		}
		if max >= def && max > 0 {
			svc.maxPageSize = max
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(svc *Service) {
		if log != nil {
			svc.log = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	svc := &Service{
		workers:         runtime.NumCPU() * 2,
		defaultPageSize: 25,
		maxPageSize:     100,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Start finishes wiring and makes the service ready to serve.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Get().Named("app")
	}
	if s.store == nil {
		mem := repository.NewMemStore()
		s.store = mem
		s.writer = mem
		s.log.Info(ctx, "using in-memory population store")
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
		s.log.Info(ctx, "using in-memory bundle cache")
	}
	s.ranker = leaderboard.New(s.store, s.cache,
		leaderboard.WithWorkers(s.workers),
		leaderboard.WithLogger(s.log.Named("leaderboard")),
	)

	s.started = true
	s.log.Info(ctx, "rating service started", logger.Int("workers", s.workers))
	return nil
}

// Stop releases resources held by pluggable backends.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.cache.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if closer, ok := s.store.(interface{ Close() }); ok {
		closer.Close()
	}
	s.started = false
	s.log.Info(context.Background(), "rating service stopped")
}

// Leaderboard normalizes and executes a leaderboard query.
func (s *Service) Leaderboard(ctx context.Context, q leaderboard.Query) (leaderboard.Page, error) {
	q.Normalize(s.defaultPageSize, s.maxPageSize)
	return s.ranker.Leaderboard(ctx, q)
}

// Rating returns a user's rating bundle, cache-first. Unknown users map to
// repository.ErrUserNotFound.
func (s *Service) Rating(ctx context.Context, userID string) (model.RatingBundle, error) {
	if _, err := s.store.User(ctx, userID); err != nil {
		return model.RatingBundle{}, err
	}
	return s.ranker.Bundle(ctx, userID)
}

// RecordObservation ingests an approved observation and evicts the
// subject's cached bundle so the next read reflects the new population.
func (s *Service) RecordObservation(ctx context.Context, obs model.Observation) error {
	if s.writer == nil {
		return ErrReadOnlyStore
	}
	if err := s.writer.AddObservation(ctx, obs); err != nil {
		return fmt.Errorf("record observation: %w", err)
	}
	s.ranker.Invalidate(ctx, obs.UserID)
	return nil
}

// UpsertUser stores a user profile.
func (s *Service) UpsertUser(ctx context.Context, u model.UserProfile) error {
	if s.writer == nil {
		return ErrReadOnlyStore
	}
	if err := s.writer.PutUser(ctx, u); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	// Profile changes shift tiebreak attributes, not ratings; the bundle
	// itself stays valid.
	return nil
}

// PutMetric registers a metric definition.
func (s *Service) PutMetric(ctx context.Context, def model.MetricDefinition) error {
	if s.writer == nil {
		return ErrReadOnlyStore
	}
	if err := s.writer.PutMetric(ctx, def); err != nil {
		return fmt.Errorf("put metric: %w", err)
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":           s.started,
		"workers":           s.workers,
		"default_page_size": s.defaultPageSize,
		"max_page_size":     s.maxPageSize,
	}
	if s.started {
		ctx := context.Background()
		if users, err := s.store.Users(ctx); err == nil {
			stats["total_users"] = len(users)
		}
		if defs, err := s.store.MetricDefinitions(ctx); err == nil {
			stats["total_metrics"] = len(defs)
		}
	}
	return stats
}
