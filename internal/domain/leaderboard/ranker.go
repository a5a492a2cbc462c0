package leaderboard

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/podiumlab/podium/internal/adapters/repository"
	"github.com/podiumlab/podium/internal/cache"
	"github.com/podiumlab/podium/internal/domain/model"
	"github.com/podiumlab/podium/pkg/logger"
	"github.com/podiumlab/podium/pkg/metrics"
)

// idealBMI anchors the body-composition tiebreak.
const idealBMI = 22.0

// Entry is one leaderboard row: a projection for a single query, never
// persisted.
type Entry struct {
	Rank             int     `json:"rank"`
	UserID           string  `json:"user_id"`
	DisplayName      string  `json:"display_name"`
	Rating           float64 `json:"rating"`
	Tier             string  `json:"tier"`
	ClassID          string  `json:"class_id"`
	GymID            string  `json:"gym_id,omitempty"`
	State            string  `json:"state,omitempty"`
	City             string  `json:"city,omitempty"`
	Age              int     `json:"age"`
	ObservationCount int     `json:"observation_count"`
	BMIDeviation     float64 `json:"bmi_deviation"`
}

// Pagination describes the slice position inside the full ordering.
type Pagination struct {
	Total       int  `json:"total"`
	Limit       int  `json:"limit"`
	Offset      int  `json:"offset"`
	NextCursor  int  `json:"next_cursor"`
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasMore     bool `json:"has_more"`
}

// JumpInfo echoes a jump-to-rank request and where its page landed.
type JumpInfo struct {
	TargetRank int  `json:"target_rank"`
	PageStart  int  `json:"page_start"` // 0-based slice start
	Included   bool `json:"included"`   // target rank exists and is on the page
}

// FacetEcho returns the resolved facet parameters to the caller.
type FacetEcho struct {
	By         string `json:"by"`
	ClassID    string `json:"class_id,omitempty"`
	GymID      string `json:"gym_id,omitempty"`
	State      string `json:"state,omitempty"`
	City       string `json:"city,omitempty"`
	Age        int    `json:"age,omitempty"`
	AgeMin     int    `json:"age_min,omitempty"`
	AgeMax     int    `json:"age_max,omitempty"`
	SearchName string `json:"search_name,omitempty"`
}

// Page is a complete leaderboard response.
type Page struct {
	Entries    []Entry    `json:"entries"`
	Pagination Pagination `json:"pagination"`
	Facets     FacetEcho  `json:"facets"`
	Jump       *JumpInfo  `json:"jump_info,omitempty"`
}

// Ranker computes leaderboards. It is stateless apart from its injected
// collaborators, so one instance serves any number of concurrent queries.
type Ranker struct {
	store   repository.Store
	cache   cache.Cache
	workers int
	log     logger.Logger
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithWorkers bounds the bundle-computation fan-out per query.
func WithWorkers(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Ranker) {
		if log != nil {
			r.log = log
		}
	}
}

// New constructs a Ranker over a store and a bundle cache.
func New(store repository.Store, c cache.Cache, opts ...Option) *Ranker {
	r := &Ranker{
		store:   store,
		cache:   c,
		workers: runtime.NumCPU() * 2,
		log:     logger.Get().Named("leaderboard"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// candidate pairs a profile with its bundle and derived tiebreak attributes.
type candidate struct {
	user     model.UserProfile
	bundle   model.RatingBundle
	rating   float64 // primary rating under the query's facet
	age      int
	bmiDev   float64
	nameFold string
}

// Leaderboard runs the full ranking pipeline for q: filter, rate
// (cache-first), order, paginate. The caller's ctx bounds every store
// fetch; a failed fetch aborts the whole computation.
func (r *Ranker) Leaderboard(ctx context.Context, q Query) (Page, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordLeaderboardQuery()

	now := time.Now()
	users, err := r.store.Users(ctx)
	if err != nil {
		r.log.Error(ctx, "listing users failed",
			logger.String("facet", string(q.Facet)), logger.Error(err))
		return Page{}, fmt.Errorf("%w: users: %w", ErrPopulationFetch, err)
	}

	filtered := make([]model.UserProfile, 0, len(users))
	for _, u := range users {
		if r.matches(q, u, now) {
			filtered = append(filtered, u)
		}
	}

	bundles, err := r.bundles(ctx, filtered)
	if err != nil {
		r.log.Error(ctx, "rating computation failed",
			logger.String("facet", string(q.Facet)),
			logger.Int("candidates", len(filtered)), logger.Error(err))
		return Page{}, err
	}

	cands := make([]candidate, len(filtered))
	for i, u := range filtered {
		cands[i] = candidate{
			user:     u,
			bundle:   bundles[i],
			rating:   primaryRating(q, bundles[i]),
			age:      u.AgeAt(now),
			bmiDev:   bmiDeviation(u),
			nameFold: strings.ToLower(u.DisplayName),
		}
	}
	sort.Slice(cands, func(i, j int) bool { return less(cands[i], cands[j]) })

	return r.paginate(q, cands), nil
}

// matches applies the onboarding requirement, the facet, and all secondary
// filters to one profile.
func (r *Ranker) matches(q Query, u model.UserProfile, now time.Time) bool {
	if !u.Onboarded() {
		return false
	}

	age := u.AgeAt(now)
	switch q.Facet {
	case FacetClass:
		if q.ClassID == "" || !strings.EqualFold(u.PrimaryClassID, q.ClassID) {
			return false
		}
	case FacetGym:
		if q.GymID == "" || !strings.EqualFold(u.GymID, q.GymID) {
			return false
		}
	case FacetState:
		if q.State == "" || !strings.EqualFold(u.State, q.State) {
			return false
		}
	case FacetCity:
		if q.City == "" || !strings.EqualFold(u.City, q.City) {
			return false
		}
	case FacetAge:
		if !q.hasAgeFilter() {
			return false
		}
	case FacetOverall:
		// No facet constraint.
	}

	// Secondary filters apply on top of whatever facet was chosen.
	if q.ClassID != "" && !strings.EqualFold(u.PrimaryClassID, q.ClassID) {
		return false
	}
	if q.GymID != "" && !strings.EqualFold(u.GymID, q.GymID) {
		return false
	}
	if q.State != "" && !strings.EqualFold(u.State, q.State) {
		return false
	}
	if q.City != "" && !strings.EqualFold(u.City, q.City) {
		return false
	}
	if q.hasAgeFilter() && !q.matchAge(age) {
		return false
	}
	if q.SearchName != "" &&
		!strings.Contains(strings.ToLower(u.DisplayName), strings.ToLower(q.SearchName)) {
		return false
	}
	return true
}

// primaryRating picks the rating the query sorts on: the faceted class's
// rating for class leaderboards, overall for everything else.
func primaryRating(q Query, b model.RatingBundle) float64 {
	if q.Facet == FacetClass {
		for classID, r := range b.ClassRatings {
			if strings.EqualFold(classID, q.ClassID) {
				return r
			}
		}
	}
	return b.OverallRating
}

// less is the deterministic total order: rating desc, then counted
// observations desc, younger first, BMI deviation asc, folded name asc,
// and user id asc as the final guarantee.
func less(a, b candidate) bool {
	if a.rating != b.rating {
		return a.rating > b.rating
	}
	if a.bundle.ObservationCount != b.bundle.ObservationCount {
		return a.bundle.ObservationCount > b.bundle.ObservationCount
	}
	if a.age != b.age {
		return a.age < b.age
	}
	if a.bmiDev != b.bmiDev {
		return a.bmiDev < b.bmiDev
	}
	if a.nameFold != b.nameFold {
		return a.nameFold < b.nameFold
	}
	return a.user.ID < b.user.ID
}

// paginate slices the ordered candidates into the requested page and
// assembles the response metadata.
func (r *Ranker) paginate(q Query, cands []candidate) Page {
	total := len(cands)

	start := q.Offset
	var jump *JumpInfo
	if q.JumpToRank > 0 {
		start = q.JumpToRank - 1 - q.Limit/2
		if start < 0 {
			start = 0
		}
		jump = &JumpInfo{TargetRank: q.JumpToRank, PageStart: start}
	}
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	if jump != nil {
		jump.Included = q.JumpToRank > start && q.JumpToRank <= end
	}

	entries := make([]Entry, 0, end-start)
	for i := start; i < end; i++ {
		c := cands[i]
		entries = append(entries, Entry{
			Rank:             i + 1,
			UserID:           c.user.ID,
			DisplayName:      c.user.DisplayName,
			Rating:           c.rating,
			Tier:             c.bundle.Tier,
			ClassID:          c.user.PrimaryClassID,
			GymID:            c.user.GymID,
			State:            c.user.State,
			City:             c.user.City,
			Age:              c.age,
			ObservationCount: c.bundle.ObservationCount,
			BMIDeviation:     c.bmiDev,
		})
	}

	// An un-normalized query may still carry a zero limit; degrade to an
	// empty first page instead of dividing by it.
	totalPages := 0
	currentPage := 1
	if q.Limit > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
		currentPage = start/q.Limit + 1
	}
	nextCursor := 0
	if end < total {
		nextCursor = end
	}
	return Page{
		Entries: entries,
		Pagination: Pagination{
			Total:       total,
			Limit:       q.Limit,
			Offset:      start,
			NextCursor:  nextCursor,
			CurrentPage: currentPage,
			TotalPages:  totalPages,
			HasMore:     end < total,
		},
		Facets: FacetEcho{
			By:         string(q.Facet),
			ClassID:    q.ClassID,
			GymID:      q.GymID,
			State:      q.State,
			City:       q.City,
			Age:        q.Age,
			AgeMin:     q.AgeMin,
			AgeMax:     q.AgeMax,
			SearchName: q.SearchName,
		},
		Jump: jump,
	}
}

// bmiDeviation is |BMI - 22|; profiles without height or weight sort after
// complete ones at the same rating, age and observation count.
func bmiDeviation(u model.UserProfile) float64 {
	bmi := u.BMI()
	if bmi == 0 {
		return math.Inf(1)
	}
	return math.Abs(bmi - idealBMI)
}
