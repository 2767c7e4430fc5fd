package adjust

import "errors"

// ErrMalformedInput is returned by parsers for unreadable situational input.
// Callers normally recover to a neutral value.
var ErrMalformedInput = errors.New("malformed input")
