package repository

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open selects a backend by driver name.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverSQLite:
		s, err := OpenSQLiteStore(ctx, dsn, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := OpenPostgresStore(ctx, dsn, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidDSN, driver)
	}
}
