package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrMetricNotFound = errors.New("metric not found")
)
