package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/podiumlab/podium/internal/app"
	"github.com/podiumlab/podium/internal/domain/model"
)

// IngestDependencies defines the write-side interface.
type IngestDependencies interface {
	RecordObservation(ctx context.Context, obs model.Observation) error
	UpsertUser(ctx context.Context, u model.UserProfile) error
	PutMetric(ctx context.Context, def model.MetricDefinition) error
}

// observationRequest mirrors the consumed observation stream contract.
type observationRequest struct {
	UserID   string  `json:"user_id"`
	MetricID string  `json:"metric_id"`
	Value    float64 `json:"value"`
	Counted  bool    `json:"included_in_ranking"`
	TS       string  `json:"ts"`
}

func (o observationRequest) validate() error {
	switch {
	case strings.TrimSpace(o.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(o.MetricID) == "":
		return errors.New("missing metric_id")
	}
	if o.TS != "" {
		if _, err := time.Parse(time.RFC3339, o.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

// ObservationsHandler handles observation ingestion.
type ObservationsHandler struct {
	deps IngestDependencies
}

// NewObservationsHandler creates a new observations handler.
func NewObservationsHandler(deps IngestDependencies) *ObservationsHandler {
	return &ObservationsHandler{deps: deps}
}

// HandlePostObservation handles POST /observations requests. A counted
// observation mutates the population, so the subject's cached bundle is
// evicted downstream.
func (h *ObservationsHandler) HandlePostObservation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_observation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req observationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	at := time.Now()
	if req.TS != "" {
		at, _ = time.Parse(time.RFC3339, req.TS)
	}
	obs := model.Observation{
		UserID:   req.UserID,
		MetricID: req.MetricID,
		Value:    req.Value,
		Counted:  req.Counted,
		At:       at,
	}
	if err := h.deps.RecordObservation(r.Context(), obs); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		if errors.Is(err, app.ErrReadOnlyStore) {
			writeError(w, http.StatusMethodNotAllowed, "read_only", NewKind(op, ErrReadOnly))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// metricRequest mirrors the consumed metric definition contract.
type metricRequest struct {
	ClassID        string             `json:"class_id"`
	HigherIsBetter bool               `json:"higher_is_better"`
	Breakpoints    []model.Breakpoint `json:"breakpoints,omitempty"`
}

// MetricsHandler handles metric definition upserts.
type MetricsHandler struct {
	deps IngestDependencies
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(deps IngestDependencies) *MetricsHandler {
	return &MetricsHandler{deps: deps}
}

// HandlePutMetric handles PUT /metrics/{id} requests.
func (h *MetricsHandler) HandlePutMetric(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_metric"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	metricID := strings.TrimPrefix(r.URL.Path, "/metrics/")
	if metricID == "" || strings.Contains(metricID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	var req metricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.ClassID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("missing class_id")))
		return
	}
	def := model.MetricDefinition{
		ID:             metricID,
		ClassID:        req.ClassID,
		HigherIsBetter: req.HigherIsBetter,
		Breakpoints:    req.Breakpoints,
	}
	if err := h.deps.PutMetric(r.Context(), def); err != nil {
		if errors.Is(err, app.ErrReadOnlyStore) {
			writeError(w, http.StatusMethodNotAllowed, "read_only", NewKind(op, ErrReadOnly))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

// userRequest mirrors the consumed user profile contract.
type userRequest struct {
	DisplayName    string  `json:"display_name"`
	DateOfBirth    string  `json:"date_of_birth"` // YYYY-MM-DD
	Gender         string  `json:"gender"`
	HeightCm       float64 `json:"height_cm"`
	WeightKg       float64 `json:"weight_kg"`
	PrimaryClassID string  `json:"primary_class_id"`
	GymID          string  `json:"gym_id"`
	State          string  `json:"state"`
	City           string  `json:"city"`
}

// UsersHandler handles profile upserts.
type UsersHandler struct {
	deps IngestDependencies
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps IngestDependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

// HandlePutUser handles PUT /users/{id} requests.
func (h *UsersHandler) HandlePutUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_user"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/users/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var dob time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, errors.New("invalid date_of_birth; must be YYYY-MM-DD")))
			return
		}
		dob = parsed
	}

	u := model.UserProfile{
		ID:             userID,
		DisplayName:    req.DisplayName,
		DateOfBirth:    dob,
		Gender:         req.Gender,
		HeightCm:       req.HeightCm,
		WeightKg:       req.WeightKg,
		PrimaryClassID: req.PrimaryClassID,
		GymID:          req.GymID,
		State:          req.State,
		City:           req.City,
	}
	if err := h.deps.UpsertUser(r.Context(), u); err != nil {
		if errors.Is(err, app.ErrReadOnlyStore) {
			writeError(w, http.StatusMethodNotAllowed, "read_only", NewKind(op, ErrReadOnly))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}
