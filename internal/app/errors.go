package service

import "errors"

// Sentinel kinds surfaced by the service.
var (
	// ErrUnknownTeam is returned when a team identifier is not a known franchise.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrInvalidRequest is returned for malformed projection or reconciliation input.
	ErrInvalidRequest = errors.New("invalid request")
)
