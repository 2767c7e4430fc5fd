package repository

import "github.com/okian/hoopline/pkg/logger"

// settings are shared by every Store implementation.
type settings struct {
	strictReconcile bool
	log             logger.Logger
}

func newSettings(opts []Option) settings {
	s := settings{log: logger.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option applies a configuration option to a Store.
type Option func(*settings)

// WithStrictReconcile rejects a second reconciliation of the same prediction
// with ErrAlreadyReconciled instead of overwriting the observed total.
func WithStrictReconcile(strict bool) Option {
	return func(s *settings) { s.strictReconcile = strict }
}

// WithLogger sets the logger used for ledger writes.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}
