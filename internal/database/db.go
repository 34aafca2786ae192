package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RiskForecast/internal/storage/codec"
	"github.com/Alias1177/RiskForecast/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	DSN            string
	ConnectTimeout time.Duration
}

// New opens the database, waits for it to accept connections and creates the
// schema if it does not exist yet.
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	logger := log.With().Str("component", "postgres_store").Logger()

	// The database often starts after the app in compose setups; retry the ping.
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = params.ConnectTimeout
	if b.MaxElapsedTime == 0 {
		b.MaxElapsedTime = 30 * time.Second
	}
	ping := func() error {
		err := db.PingContext(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Database not ready, retrying")
		}
		return err
	}
	if err := backoff.Retry(ping, backoff.WithContext(b, ctx)); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &DB{DB: db, logger: logger}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS forecasts (
			position         INTEGER NOT NULL,
			forecast_id      TEXT PRIMARY KEY,
			author           TEXT,
			team             TEXT,
			forecast_type    TEXT NOT NULL,
			outcome_class    TEXT NOT NULL,
			comparison_level TEXT NOT NULL,
			outcome          SMALLINT,
			document         JSONB NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS forecasts_position_idx ON forecasts (position)
	`)
	return err
}

// Load returns all forecasts in creation order.
func (db *DB) Load(ctx context.Context) ([]models.Forecast, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT document
		FROM forecasts
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query forecasts: %w", err)
	}
	defer rows.Close()

	forecasts := []models.Forecast{}
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		f, err := codec.Decode(document)
		if err != nil {
			return nil, err
		}
		forecasts = append(forecasts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forecasts: %w", err)
	}

	db.logger.Debug().Int("count", len(forecasts)).Msg("Forecasts loaded")
	return forecasts, nil
}

// SaveAll replaces every stored forecast in one transaction.
func (db *DB) SaveAll(ctx context.Context, forecasts []models.Forecast) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM forecasts`); err != nil {
		return fmt.Errorf("clear forecasts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO forecasts (
			position, forecast_id, author, team, forecast_type, outcome_class, comparison_level, outcome, document
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range forecasts {
		document, err := codec.Encode(f)
		if err != nil {
			return err
		}
		var outcome sql.NullInt16
		if f.Outcome != nil {
			outcome = sql.NullInt16{Int16: int16(*f.Outcome), Valid: true}
		}
		_, err = stmt.ExecContext(ctx,
			i, f.ID, nullString(f.Author), nullString(f.Team),
			string(f.Type), string(f.OutcomeClass), string(f.ComparisonLevel), outcome, document)
		if err != nil {
			return fmt.Errorf("insert forecast %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit forecasts: %w", err)
	}

	db.logger.Debug().Int("count", len(forecasts)).Msg("Forecasts saved")
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
