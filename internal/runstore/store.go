// Package runstore persists a ledger of launched runs in a local SQLite
// database: the resolved command line, GPU placement, timing, exit status,
// and any harvested metrics. The ledger is append-only from the launcher's
// point of view; history queries read it back for the --history listing.
package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the ledger database.
type Store struct {
	db *sql.DB
}

// Record is one ledger row.
type Record struct {
	ID         string
	Name       string
	Experiment string
	Mode       string
	GPU        string
	Command    string
	StartedAt  time.Time
	FinishedAt time.Time
	ExitCode   int
	Finished   bool
	Metrics    map[string]float64
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	experiment  TEXT NOT NULL,
	mode        TEXT NOT NULL,
	gpu         TEXT NOT NULL,
	command     TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	exit_code   INTEGER
);
CREATE TABLE IF NOT EXISTS run_metrics (
	run_id TEXT NOT NULL REFERENCES runs(id),
	key    TEXT NOT NULL,
	value  REAL NOT NULL,
	PRIMARY KEY (run_id, key)
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at);
`

// Open opens (and if needed creates) the ledger at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run ledger %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize run ledger schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStart inserts a run row at spawn time, before the outcome is known.
func (s *Store) RecordStart(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, experiment, mode, gpu, command, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Experiment, rec.Mode, rec.GPU, rec.Command, rec.StartedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// RecordFinish completes a run row with its exit status and metrics.
func (s *Store) RecordFinish(ctx context.Context, id string, finishedAt time.Time, exitCode int, metrics map[string]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, exit_code = ? WHERE id = ?`,
		finishedAt.UnixMilli(), exitCode, id)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %q was never recorded as started", id)
	}

	for key, value := range metrics {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO run_metrics (run_id, key, value) VALUES (?, ?, ?)`,
			id, key, value); err != nil {
			return fmt.Errorf("failed to record metric %q: %w", key, err)
		}
	}

	return tx.Commit()
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, experiment, mode, gpu, command, started_at, finished_at, exit_code
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			rec        Record
			startedAt  int64
			finishedAt sql.NullInt64
			exitCode   sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Experiment, &rec.Mode, &rec.GPU,
			&rec.Command, &startedAt, &finishedAt, &exitCode); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		rec.StartedAt = time.UnixMilli(startedAt)
		if finishedAt.Valid {
			rec.Finished = true
			rec.FinishedAt = time.UnixMilli(finishedAt.Int64)
			rec.ExitCode = int(exitCode.Int64)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	for _, rec := range records {
		if err := s.loadMetrics(ctx, rec); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Store) loadMetrics(ctx context.Context, rec *Record) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM run_metrics WHERE run_id = ?`, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load metrics for run %q: %w", rec.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value float64
		)
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan metric row: %w", err)
		}
		if rec.Metrics == nil {
			rec.Metrics = make(map[string]float64)
		}
		rec.Metrics[key] = value
	}
	return rows.Err()
}
