// Package repository persists the prediction ledger.
//
// Three backends share one contract: an in-memory store for tests and
// ephemeral runs, an embedded SQLite file and a PostgreSQL table. Writes are
// serialized per store, so identifiers are assigned in order and a
// reconciliation is never lost.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/hoopline/internal/domain/model"
)

// DateLayout is the calendar-day format stored in the ledger.
const DateLayout = "2006-01-02"

// Store provides read/write access to the prediction ledger.
type Store interface {
	// Record appends a prediction with no observed total and returns its id.
	// The ID and ObservedTotal fields of rec are ignored.
	Record(ctx context.Context, rec model.PredictionRecord) (int64, error)

	// Reconcile attaches the observed total to a prediction.
	// Returns ErrNotFound if the id is unknown; in strict mode returns
	// ErrAlreadyReconciled if a total is already attached.
	Reconcile(ctx context.Context, id int64, observed float64) error

	// Get returns one prediction. Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id int64) (model.PredictionRecord, error)

	// List returns the predictions passing f, ordered by id.
	List(ctx context.Context, f model.Filter) ([]model.PredictionRecord, error)

	// Close releases the backend.
	Close() error
}

// Validate checks a record before it is written.
func Validate(rec model.PredictionRecord) error {
	if _, err := time.Parse(DateLayout, rec.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRecord, rec.Date)
	}
	if strings.TrimSpace(rec.HomeTeam) == "" || strings.TrimSpace(rec.AwayTeam) == "" {
		return fmt.Errorf("%w: home and away teams are required", ErrInvalidRecord)
	}
	return nil
}
