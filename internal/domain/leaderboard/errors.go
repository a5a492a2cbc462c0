package leaderboard

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrPopulationFetch = errors.New("population fetch failed")
)
