// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/podiumlab/podium/internal/adapters/repository"
	"github.com/podiumlab/podium/internal/domain/leaderboard"
	"github.com/podiumlab/podium/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Leaderboard executes a normalized leaderboard query.
	Leaderboard(ctx context.Context, q leaderboard.Query) (leaderboard.Page, error)

	// Rating returns a user's rating bundle, cache-first.
	Rating(ctx context.Context, userID string) (model.RatingBundle, error)

	// Ingestion writes through to the population store.
	RecordObservation(ctx context.Context, obs model.Observation) error
	UpsertUser(ctx context.Context, u model.UserProfile) error
	PutMetric(ctx context.Context, def model.MetricDefinition) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	leaderboardHandler  *LeaderboardHandler
	ratingHandler       *RatingHandler
	observationsHandler *ObservationsHandler
	usersHandler        *UsersHandler
	metricsHandler      *MetricsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, defaultLimit, maxLimit int) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		leaderboardHandler:  NewLeaderboardHandler(deps, defaultLimit, maxLimit),
		ratingHandler:       NewRatingHandler(deps),
		observationsHandler: NewObservationsHandler(deps),
		usersHandler:        NewUsersHandler(deps),
		metricsHandler:      NewMetricsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/leaderboards", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboards"))
	mux.HandleFunc("/ratings/", MetricsMiddleware(s.ratingHandler.HandleGetRating, "ratings"))
	mux.HandleFunc("/observations", MetricsMiddleware(s.observationsHandler.HandlePostObservation, "observations"))
	mux.HandleFunc("/users/", MetricsMiddleware(s.usersHandler.HandlePutUser, "users"))
	mux.HandleFunc("/metrics/", MetricsMiddleware(s.metricsHandler.HandlePutMetric, "metrics"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrUserNotFound) ||
		errors.Is(err, repository.ErrMetricNotFound)
}
