package feeds

import "errors"

// Sentinel kinds for feed errors.
var (
	// ErrDataUnavailable means neither the feed nor any static fallback has data.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrUpstream wraps transport failures and non-2xx responses.
	ErrUpstream = errors.New("upstream feed error")
	// ErrDisabled is returned when a feed has no URL configured.
	ErrDisabled = errors.New("feed disabled")
)
