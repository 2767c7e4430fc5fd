package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/okian/hoopline/internal/domain/model"
)

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore persists the ledger in a PostgreSQL table.
type PostgresStore struct {
	*sqlStore
}

// OpenPostgresStore connects, pings and initializes the schema.
func OpenPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", ErrInvalidDSN)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", ErrInvalidDSN, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", ErrUnavailable, err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS predictions (
		id              BIGSERIAL PRIMARY KEY,
		date            TEXT             NOT NULL,
		home_team       TEXT             NOT NULL,
		away_team       TEXT             NOT NULL,
		predicted_total DOUBLE PRECISION NOT NULL,
		casino_line     DOUBLE PRECISION NOT NULL,
		observed_total  DOUBLE PRECISION
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_date ON predictions(date);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", ErrUnavailable, err)
	}

	s := &PostgresStore{sqlStore: &sqlStore{settings: newSettings(opts), db: db, dollar: true}}
	s.insertID = func(ctx context.Context, tx *sql.Tx, rec model.PredictionRecord) (int64, error) {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO predictions (date, home_team, away_team, predicted_total, casino_line)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			rec.Date, rec.HomeTeam, rec.AwayTeam, rec.PredictedTotal, rec.CasinoLine).Scan(&id)
		return id, err
	}
	return s, nil
}
