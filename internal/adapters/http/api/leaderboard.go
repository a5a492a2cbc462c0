package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/podiumlab/podium/internal/domain/leaderboard"
)

// LeaderboardDependencies defines the interface for leaderboard queries.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, q leaderboard.Query) (leaderboard.Page, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps         LeaderboardDependencies
	defaultLimit int
	maxLimit     int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, defaultLimit, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// leaderboardResponse mirrors the exposed query contract.
type leaderboardResponse struct {
	Success    bool                   `json:"success"`
	Entries    []leaderboard.Entry    `json:"entries"`
	Pagination leaderboard.Pagination `json:"pagination"`
	Facets     leaderboard.FacetEcho  `json:"facets"`
	Jump       *leaderboard.JumpInfo  `json:"jump_info"`
}

// HandleGetLeaderboard handles GET /leaderboards requests.
//
// Malformed numeric parameters degrade to their zero values and are then
// clamped by Query.Normalize; they never produce a client error.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := parseLeaderboardQuery(r.URL.Query())
	q.Normalize(h.defaultLimit, h.maxLimit)
	page, err := h.deps.Leaderboard(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Success:    true,
		Entries:    page.Entries,
		Pagination: page.Pagination,
		Facets:     page.Facets,
		Jump:       page.Jump,
	})
}

// parseLeaderboardQuery maps URL parameters onto the typed query.
func parseLeaderboardQuery(values url.Values) leaderboard.Query {
	return leaderboard.Query{
		Facet:      leaderboard.ParseFacet(values.Get("by")),
		ClassID:    values.Get("classId"),
		GymID:      values.Get("gymId"),
		State:      values.Get("state"),
		City:       values.Get("city"),
		Age:        intParam(values, "age"),
		AgeMin:     intParam(values, "ageMin"),
		AgeMax:     intParam(values, "ageMax"),
		SearchName: values.Get("searchName"),
		Limit:      intParam(values, "limit"),
		Offset:     intParam(values, "cursor"),
		JumpToRank: intParam(values, "jumpToRank"),
	}
}

// intParam parses a numeric parameter, degrading malformed input to zero.
func intParam(values url.Values, key string) int {
	n, err := strconv.Atoi(values.Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
