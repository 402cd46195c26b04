// Package store handles SQLite persistence of finished runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/retype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB
}

// Totals summarizes every stored run for one source, or all sources.
type Totals struct {
	Runs       int
	Correct    int
	Incorrect  int
	Errors     int
	DurationMs int64
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc/sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			source TEXT NOT NULL,
			filter_comments INTEGER NOT NULL,
			lines INTEGER NOT NULL,
			chars_typed INTEGER NOT NULL,
			words_typed INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_char_stats (
			session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (session_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_source ON sessions(source);`,
	},
	{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_run_id ON sessions(run_id);`,
	},
}

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	for v := version; v < len(migrations); v++ {
		for _, stmt := range migrations[v] {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d: %w", v+1, err)
			}
		}
		// PRAGMA does not accept bound parameters.
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, v+1)); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}

// SchemaVersion reports how many migrations have been applied.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version)
	return version, err
}

// InsertSession stores a finished run and its per-character stats.
func (s *Store) InsertSession(ctx context.Context, run model.SessionStats, chars []model.CharStats) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (run_id, started_at, ended_at, source, filter_comments, lines, chars_typed, words_typed, errors, correct, incorrect, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.StartedAt.Format(time.RFC3339Nano),
		run.EndedAt.Format(time.RFC3339Nano),
		run.Source,
		boolToInt(run.FilterComments),
		run.Lines,
		run.CharsTyped,
		run.WordsTyped,
		run.Errors,
		run.Correct,
		run.Incorrect,
		run.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, err
	}
	if err = insertCharStats(ctx, tx, id, chars); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run %s: %w", run.RunID, err)
	}
	return id, nil
}

func insertCharStats(ctx context.Context, tx *sql.Tx, sessionID int64, chars []model.CharStats) error {
	if len(chars) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_char_stats (session_id, char, correct, incorrect, latency_sum_ms, latency_count)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare char stats: %w", err)
	}
	defer closeQuietly(stmt)
	for _, cs := range chars {
		if _, err := stmt.ExecContext(ctx, sessionID, cs.Char, cs.Correct, cs.Incorrect, cs.LatencySumMs, cs.LatencyCount); err != nil {
			return fmt.Errorf("failed to insert stats for %q: %w", cs.Char, err)
		}
	}
	return nil
}

// GetWeakChars aggregates character stats over the most recent runs.
func (s *Store) GetWeakChars(ctx context.Context, window int, source string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR source = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT cs.char, SUM(cs.correct) AS correct, SUM(cs.incorrect) AS incorrect,
		SUM(cs.latency_sum_ms) AS latency_sum_ms, SUM(cs.latency_count) AS latency_count
	FROM session_char_stats cs
	JOIN recent_sessions r ON r.id = cs.session_id
	GROUP BY cs.char`
	return s.queryCharAggregates(ctx, query, source, source, window)
}

// ListSessions returns run aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, cfg.Source)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, run_id, source, ended_at, correct, incorrect, errors, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer closeQuietly(rows)

	var sessions []model.SessionAggregate
	for rows.Next() {
		agg, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, agg)
	}
	return sessions, rows.Err()
}

func scanSession(rows *sql.Rows) (model.SessionAggregate, error) {
	var agg model.SessionAggregate
	var endedAt string
	if err := rows.Scan(&agg.SessionID, &agg.RunID, &agg.Source, &endedAt, &agg.Correct, &agg.Incorrect, &agg.Errors, &agg.DurationMs); err != nil {
		return agg, fmt.Errorf("failed to scan run: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, endedAt)
	if err != nil {
		return agg, fmt.Errorf("run %s has bad end time %q: %w", agg.RunID, endedAt, err)
	}
	agg.EndedAt = parsed
	return agg, nil
}

// TotalsFor sums every stored run. An empty source covers all sources.
func (s *Store) TotalsFor(ctx context.Context, source string) (Totals, error) {
	var t Totals
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(correct), 0), COALESCE(SUM(incorrect), 0),
			COALESCE(SUM(errors), 0), COALESCE(SUM(duration_ms), 0)
		FROM sessions
		WHERE (? = '' OR source = ?)`, source, source)
	if err := row.Scan(&t.Runs, &t.Correct, &t.Incorrect, &t.Errors, &t.DurationMs); err != nil {
		return Totals{}, fmt.Errorf("failed to total runs: %w", err)
	}
	return t, nil
}

// ListCharAggregatesForSessions aggregates per-character stats across runs.
func (s *Store) ListCharAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CharAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT char, SUM(correct) AS correct, SUM(incorrect) AS incorrect,
		SUM(latency_sum_ms) AS latency_sum_ms, SUM(latency_count) AS latency_count
		FROM session_char_stats
		WHERE session_id IN (%s)
		GROUP BY char`, strings.Join(placeholders, ","))
	return s.queryCharAggregates(ctx, query, args...)
}

func (s *Store) queryCharAggregates(ctx context.Context, query string, args ...any) ([]model.CharAggregate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query char stats: %w", err)
	}
	defer closeQuietly(rows)

	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, fmt.Errorf("failed to scan char stats: %w", err)
		}
		result = append(result, agg)
	}
	return result, rows.Err()
}

func closeQuietly(c io.Closer) {
	if cerr := c.Close(); cerr != nil {
		// Best-effort close.
		_ = cerr
	}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
