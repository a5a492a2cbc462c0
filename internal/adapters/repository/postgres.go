package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/podiumlab/podium/internal/domain/model"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 5 * time.Second

// PGStore is the postgres-backed Store and Writer. The best-per-user
// reduction is pushed down with DISTINCT ON so large populations never
// travel over the wire.
//
// Expected schema:
//
//	metrics(id text pk, class_id text, higher_is_better bool,
//	        breakpoints jsonb)
//	users(id text pk, display_name text, date_of_birth date, gender text,
//	      height_cm float8, weight_kg float8, primary_class_id text,
//	      gym_id text, state text, city text)
//	observations(user_id text, metric_id text, value float8,
//	             counted bool, recorded_at timestamptz)
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects a pool to url and verifies connectivity.
func NewPGStore(ctx context.Context, url string) (*PGStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// MetricDefinitions returns every known metric.
func (s *PGStore) MetricDefinitions(ctx context.Context) ([]model.MetricDefinition, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, class_id, higher_is_better, breakpoints FROM metrics`)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []model.MetricDefinition
	for rows.Next() {
		var def model.MetricDefinition
		var bps []byte
		if err := rows.Scan(&def.ID, &def.ClassID, &def.HigherIsBetter, &bps); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		if len(bps) > 0 {
			if err := json.Unmarshal(bps, &def.Breakpoints); err != nil {
				return nil, fmt.Errorf("decode breakpoints for %s: %w", def.ID, err)
			}
		}
		out = append(out, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metrics: %w", err)
	}
	return out, nil
}

// Population returns the counted observation values for one metric.
func (s *PGStore) Population(ctx context.Context, metricID string) ([]float64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT value FROM observations WHERE metric_id = $1 AND counted`, metricID)
	if err != nil {
		return nil, fmt.Errorf("query population %s: %w", metricID, err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate population: %w", err)
	}
	return out, nil
}

// BestByMetric pushes the per-metric extremum down to the database; the
// sort direction flips per metric via higher_is_better.
func (s *PGStore) BestByMetric(ctx context.Context, userID string) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (o.metric_id) o.metric_id, o.value
		FROM observations o
		JOIN metrics m ON m.id = o.metric_id
		WHERE o.user_id = $1 AND o.counted
		ORDER BY o.metric_id,
		         CASE WHEN m.higher_is_better THEN -o.value ELSE o.value END`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query best observations: %w", err)
	}
	defer rows.Close()

	best := make(map[string]float64)
	for rows.Next() {
		var metricID string
		var value float64
		if err := rows.Scan(&metricID, &value); err != nil {
			return nil, fmt.Errorf("scan best observation: %w", err)
		}
		best[metricID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate best observations: %w", err)
	}
	return best, nil
}

// ObservationCount returns how many counted observations the user has.
func (s *PGStore) ObservationCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM observations WHERE user_id = $1 AND counted`,
		userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return n, nil
}

// User returns one profile.
func (s *PGStore) User(ctx context.Context, userID string) (model.UserProfile, error) {
	var u model.UserProfile
	err := s.pool.QueryRow(ctx, `
		SELECT id, display_name, date_of_birth, gender, height_cm, weight_kg,
		       primary_class_id, gym_id, state, city
		FROM users WHERE id = $1`, userID).
		Scan(&u.ID, &u.DisplayName, &u.DateOfBirth, &u.Gender, &u.HeightCm,
			&u.WeightKg, &u.PrimaryClassID, &u.GymID, &u.State, &u.City)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.UserProfile{}, ErrUserNotFound
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("query user %s: %w", userID, err)
	}
	return u, nil
}

// Users returns all profiles.
func (s *PGStore) Users(ctx context.Context) ([]model.UserProfile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, display_name, date_of_birth, gender, height_cm, weight_kg,
		       primary_class_id, gym_id, state, city
		FROM users`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []model.UserProfile
	for rows.Next() {
		var u model.UserProfile
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.DateOfBirth, &u.Gender,
			&u.HeightCm, &u.WeightKg, &u.PrimaryClassID, &u.GymID, &u.State, &u.City); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// PutMetric registers or replaces a metric definition.
func (s *PGStore) PutMetric(ctx context.Context, def model.MetricDefinition) error {
	var bps []byte
	if len(def.Breakpoints) > 0 {
		encoded, err := json.Marshal(def.Breakpoints)
		if err != nil {
			return fmt.Errorf("encode breakpoints for %s: %w", def.ID, err)
		}
		bps = encoded
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO metrics (id, class_id, higher_is_better, breakpoints)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET class_id = EXCLUDED.class_id,
		    higher_is_better = EXCLUDED.higher_is_better,
		    breakpoints = EXCLUDED.breakpoints`,
		def.ID, def.ClassID, def.HigherIsBetter, bps)
	if err != nil {
		return fmt.Errorf("upsert metric %s: %w", def.ID, err)
	}
	return nil
}

// PutUser upserts a user profile.
func (s *PGStore) PutUser(ctx context.Context, u model.UserProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, display_name, date_of_birth, gender, height_cm,
		                   weight_kg, primary_class_id, gym_id, state, city)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    date_of_birth = EXCLUDED.date_of_birth,
		    gender = EXCLUDED.gender,
		    height_cm = EXCLUDED.height_cm,
		    weight_kg = EXCLUDED.weight_kg,
		    primary_class_id = EXCLUDED.primary_class_id,
		    gym_id = EXCLUDED.gym_id,
		    state = EXCLUDED.state,
		    city = EXCLUDED.city`,
		u.ID, u.DisplayName, u.DateOfBirth, u.Gender, u.HeightCm, u.WeightKg,
		u.PrimaryClassID, u.GymID, u.State, u.City)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.ID, err)
	}
	return nil
}

// AddObservation appends one observation.
func (s *PGStore) AddObservation(ctx context.Context, obs model.Observation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO observations (user_id, metric_id, value, counted, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`,
		obs.UserID, obs.MetricID, obs.Value, obs.Counted, obs.At)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}
