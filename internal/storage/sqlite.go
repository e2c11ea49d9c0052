package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/classroom-sim/pkg/runlog"
)

// SQLiteStorage implements Store on a local SQLite file.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SQLiteStorage implements Store interface
var _ Store = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (or creates) the database at path and runs migrations.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One writer is all a single-learner run needs.
	db.SetMaxOpenConns(1)

	s := &SQLiteStorage{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS summaries (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT    NOT NULL UNIQUE,
			scenario_id  TEXT    NOT NULL,
			ending_id    TEXT    NOT NULL DEFAULT '',
			ended_at     TEXT    NOT NULL DEFAULT '',
			data         TEXT    NOT NULL,
			created_at   TEXT    NOT NULL DEFAULT (datetime('now'))
		);
		CREATE INDEX IF NOT EXISTS idx_summaries_scenario ON summaries(scenario_id);
	`)
	return err
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close sqlite database", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteStorage) Save(ctx context.Context, summary *runlog.Summary) error {
	if summary == nil {
		return errors.New("summary cannot be nil")
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO summaries (run_id, scenario_id, ending_id, ended_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			ending_id = excluded.ending_id,
			ended_at  = excluded.ended_at,
			data      = excluded.data`,
		summary.RunID.String(), summary.ScenarioID, summary.EndID, summary.EndedAt, string(data))
	if err != nil {
		s.logger.Error("Failed to save summary", "run_id", summary.RunID, "error", err)
		return fmt.Errorf("failed to save summary: %w", err)
	}

	s.logger.Debug("Summary saved", "run_id", summary.RunID, "scenario_id", summary.ScenarioID)
	return nil
}

func (s *SQLiteStorage) Load(ctx context.Context, runID uuid.UUID) (*runlog.Summary, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM summaries WHERE run_id = ?`, runID.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	var sum runlog.Summary
	if err := json.Unmarshal([]byte(data), &sum); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &sum, nil
}

func (s *SQLiteStorage) List(ctx context.Context, scenarioID string) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM summaries WHERE scenario_id = ? ORDER BY seq`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		id, err := uuid.Parse(v)
		if err != nil {
			s.logger.Warn("Skipping malformed run id", "value", v, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
