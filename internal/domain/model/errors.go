package model

import "errors"

// ErrInvalidDistribution is returned when a quarter distribution does not sum to one.
var ErrInvalidDistribution = errors.New("invalid quarter distribution")
