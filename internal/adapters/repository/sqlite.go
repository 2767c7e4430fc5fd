package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/okian/hoopline/internal/domain/model"
)

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists the ledger in an embedded SQLite file.
type SQLiteStore struct {
	*sqlStore
	path string
}

// OpenSQLiteStore opens or creates the ledger at path.
func OpenSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: sqlite path is empty", ErrInvalidDSN)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrUnavailable, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			date            TEXT    NOT NULL,
			home_team       TEXT    NOT NULL,
			away_team       TEXT    NOT NULL,
			predicted_total REAL    NOT NULL,
			casino_line     REAL    NOT NULL,
			observed_total  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_date ON predictions(date)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: init schema: %v", ErrUnavailable, err)
		}
	}

	s := &SQLiteStore{
		sqlStore: &sqlStore{settings: newSettings(opts), db: db},
		path:     path,
	}
	s.insertID = func(ctx context.Context, tx *sql.Tx, rec model.PredictionRecord) (int64, error) {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO predictions (date, home_team, away_team, predicted_total, casino_line) VALUES (?, ?, ?, ?, ?)`,
			rec.Date, rec.HomeTeam, rec.AwayTeam, rec.PredictedTotal, rec.CasinoLine)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	return s, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }
