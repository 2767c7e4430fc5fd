package config

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrInvalidConfig wraps every Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps .env, file and env provider failures.
	ErrLoadConfig = errors.New("load config failed")
)
