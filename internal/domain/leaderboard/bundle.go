package leaderboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/podiumlab/podium/internal/domain/model"
	"github.com/podiumlab/podium/internal/domain/percentile"
	"github.com/podiumlab/podium/internal/domain/rating"
	"github.com/podiumlab/podium/pkg/metrics"
)

// Bundle returns the user's rating bundle, cache-first. A miss triggers a
// full recomputation against the current population snapshot; the result is
// written back with last-write-wins semantics.
func (r *Ranker) Bundle(ctx context.Context, userID string) (model.RatingBundle, error) {
	if b, ok := r.cache.Get(ctx, userID); ok {
		return b, nil
	}
	b, err := r.compute(ctx, userID)
	if err != nil {
		return model.RatingBundle{}, err
	}
	r.cache.Set(ctx, userID, b)
	return b, nil
}

// Invalidate evicts the user's cached bundle. Ingestion calls this after an
// approval event mutates the population.
func (r *Ranker) Invalidate(ctx context.Context, userID string) {
	r.cache.Invalidate(ctx, userID)
}

// compute derives a bundle from scratch: one percentile per observed
// metric, a rating per class, and the overall rating with its tier.
func (r *Ranker) compute(ctx context.Context, userID string) (model.RatingBundle, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBundleComputeLatency(float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordBundleComputed()

	defs, err := r.store.MetricDefinitions(ctx)
	if err != nil {
		return model.RatingBundle{}, fmt.Errorf("%w: metric definitions: %w", ErrPopulationFetch, err)
	}
	best, err := r.store.BestByMetric(ctx, userID)
	if err != nil {
		return model.RatingBundle{}, fmt.Errorf("%w: best observations for %s: %w", ErrPopulationFetch, userID, err)
	}
	count, err := r.store.ObservationCount(ctx, userID)
	if err != nil {
		return model.RatingBundle{}, fmt.Errorf("%w: observation count for %s: %w", ErrPopulationFetch, userID, err)
	}

	percentiles := make(map[string]float64, len(best))
	classFractions := make(map[string][]float64)
	classRatings := make(map[string]float64)
	var standards map[string]float64

	for _, def := range defs {
		// Every class appears in the bundle; classes without observations
		// stay at the floor rating.
		if _, ok := classRatings[def.ClassID]; !ok {
			classRatings[def.ClassID] = rating.Floor
		}

		value, ok := best[def.ID]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return model.RatingBundle{}, fmt.Errorf("bundle compute canceled: %w", err)
		}
		population, err := r.store.Population(ctx, def.ID)
		if err != nil {
			return model.RatingBundle{}, fmt.Errorf("%w: population %s: %w", ErrPopulationFetch, def.ID, err)
		}
		res := percentile.Of(population, value, def.HigherIsBetter)
		percentiles[def.ID] = res.Percentile
		classFractions[def.ClassID] = append(classFractions[def.ClassID], res.Percentile/100)

		// Metrics with a breakpoint table also get a table-implied
		// percentile for display.
		if len(def.Breakpoints) > 0 {
			if standards == nil {
				standards = make(map[string]float64)
			}
			standards[def.ID] = rating.FromBreakpoints(def, value) * 100
		}
	}

	for classID, fractions := range classFractions {
		classRatings[classID] = rating.ForClass(fractions)
	}
	overall := rating.Overall(classRatings)

	return model.RatingBundle{
		UserID:              userID,
		OverallRating:       overall,
		Tier:                rating.TierFor(overall),
		ClassRatings:        classRatings,
		Percentiles:         percentiles,
		ObservationCount:    count,
		ComputedAt:          time.Now(),
		StandardPercentiles: standards,
	}, nil
}

// bundles fans the per-candidate bundle lookups out across a bounded set
// of goroutines. The output slice is index-aligned with users, so the
// later sort is deterministic regardless of completion order. The first
// error cancels the remaining work and fails the whole computation; a
// partial ranking is never returned.
func (r *Ranker) bundles(ctx context.Context, users []model.UserProfile) ([]model.RatingBundle, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]model.RatingBundle, len(users))
	jobs := make(chan int)
	errCh := make(chan error, r.workers)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				b, err := r.Bundle(ctx, users[i].ID)
				if err != nil {
					select {
					case errCh <- err:
						cancel()
					default:
					}
					return
				}
				out[i] = b
			}
		}()
	}

feed:
	for i := range users {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard computation canceled: %w", err)
	}
	return out, nil
}
