package app

import "errors"

// Sentinel kinds for service errors.
var (
	ErrReadOnlyStore = errors.New("store does not accept writes")
)
