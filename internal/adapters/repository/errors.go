package repository

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrNotFound          = errors.New("prediction not found")
	ErrAlreadyReconciled = errors.New("prediction already reconciled")
	ErrInvalidRecord     = errors.New("invalid prediction record")
	ErrInvalidDSN        = errors.New("invalid ledger dsn")
	ErrUnavailable       = errors.New("ledger unavailable")
)
