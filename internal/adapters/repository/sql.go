package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/okian/hoopline/internal/domain/model"
	"github.com/okian/hoopline/pkg/logger"
)

const selectColumns = `SELECT id, date, home_team, away_team, predicted_total, casino_line, observed_total FROM predictions`

// sqlStore is the database/sql ledger shared by the SQLite and Postgres backends.
type sqlStore struct {
	settings
	db *sql.DB
	// mu serializes writes within the process; each write also runs in its
	// own transaction.
	mu       sync.Mutex
	dollar   bool // Postgres-style $n placeholders
	insertID func(ctx context.Context, tx *sql.Tx, rec model.PredictionRecord) (int64, error)
}

// rebind rewrites ? placeholders as $1..$n when the dialect needs it.
func rebind(query string, dollar bool) string {
	if !dollar {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) q(query string) string { return rebind(query, s.dollar) }

func (s *sqlStore) Record(ctx context.Context, rec model.PredictionRecord) (int64, error) {
	if err := Validate(rec); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := s.insertID(ctx, tx, rec)
	if err != nil {
		return 0, fmt.Errorf("%w: insert: %v", ErrUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
	}
	s.log.Debug(ctx, "prediction recorded", logger.Int64("id", id), logger.String("date", rec.Date))
	return id, nil
}

func (s *sqlStore) Reconcile(ctx context.Context, id int64, observed float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `UPDATE predictions SET observed_total = ? WHERE id = ?`
	if s.strictReconcile {
		query += ` AND observed_total IS NULL`
	}
	res, err := tx.ExecContext(ctx, s.q(query), observed, id)
	if err != nil {
		return fmt.Errorf("%w: update: %v", ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", ErrUnavailable, err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, s.q(`SELECT 1 FROM predictions WHERE id = ?`), id).Scan(&exists)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		case err != nil:
			return fmt.Errorf("%w: lookup: %v", ErrUnavailable, err)
		default:
			return fmt.Errorf("%w: id %d", ErrAlreadyReconciled, id)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
	}
	s.log.Debug(ctx, "prediction reconciled", logger.Int64("id", id), logger.Float64("observed", observed))
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id int64) (model.PredictionRecord, error) {
	row := s.db.QueryRowContext(ctx, s.q(selectColumns+` WHERE id = ?`), id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PredictionRecord{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return model.PredictionRecord{}, fmt.Errorf("%w: get: %v", ErrUnavailable, err)
	}
	return rec, nil
}

func (s *sqlStore) List(ctx context.Context, f model.Filter) ([]model.PredictionRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.Date != "" {
		where = append(where, `date = ?`)
		args = append(args, f.Date)
	}
	if f.Team != "" {
		where = append(where, `(home_team = ? OR away_team = ?)`)
		args = append(args, f.Team, f.Team)
	}
	query := selectColumns
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := make([]model.PredictionRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrUnavailable, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrUnavailable, err)
	}
	return out, nil
}

func (s *sqlStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (model.PredictionRecord, error) {
	var (
		rec      model.PredictionRecord
		observed sql.NullFloat64
	)
	if err := sc.Scan(&rec.ID, &rec.Date, &rec.HomeTeam, &rec.AwayTeam,
		&rec.PredictedTotal, &rec.CasinoLine, &observed); err != nil {
		return model.PredictionRecord{}, err
	}
	if observed.Valid {
		v := observed.Float64
		rec.ObservedTotal = &v
	}
	return rec, nil
}
