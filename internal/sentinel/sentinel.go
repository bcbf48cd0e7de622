package sentinel

import "errors"

// Sentinel dependency errors. Stores and remote clients return these (optionally wrapped)
// so services can translate them into domain errors exactly once.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("unavailable")
	ErrTimeout      = errors.New("timeout")
	ErrRejected     = errors.New("rejected")
	ErrBadResponse  = errors.New("bad response")
)
