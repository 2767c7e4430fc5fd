package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/hoopline/internal/domain/model"
	"github.com/okian/hoopline/pkg/logger"
)

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the ledger in process memory.
type MemoryStore struct {
	settings
	mu      sync.RWMutex
	records []model.PredictionRecord // index i holds id i+1
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{settings: newSettings(opts)}
}

// Record implements Store.
func (s *MemoryStore) Record(ctx context.Context, rec model.PredictionRecord) (int64, error) {
	if err := Validate(rec); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = int64(len(s.records) + 1)
	rec.ObservedTotal = nil
	s.records = append(s.records, rec)
	s.log.Debug(ctx, "prediction recorded", logger.Int64("id", rec.ID), logger.String("date", rec.Date))
	return rec.ID, nil
}

// Reconcile implements Store.
func (s *MemoryStore) Reconcile(ctx context.Context, id int64, observed float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 1 || id > int64(len(s.records)) {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	rec := &s.records[id-1]
	if s.strictReconcile && rec.ObservedTotal != nil {
		return fmt.Errorf("%w: id %d", ErrAlreadyReconciled, id)
	}
	v := observed
	rec.ObservedTotal = &v
	s.log.Debug(ctx, "prediction reconciled", logger.Int64("id", id), logger.Float64("observed", observed))
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id int64) (model.PredictionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 1 || id > int64(len(s.records)) {
		return model.PredictionRecord{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return clone(s.records[id-1]), nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, f model.Filter) ([]model.PredictionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PredictionRecord, 0, len(s.records))
	for _, r := range s.records {
		if f.Matches(r) {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// clone copies the observed total so callers cannot mutate the ledger.
func clone(r model.PredictionRecord) model.PredictionRecord {
	if r.ObservedTotal != nil {
		v := *r.ObservedTotal
		r.ObservedTotal = &v
	}
	return r
}
