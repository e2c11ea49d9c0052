package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jwebster45206/classroom-sim/internal/config"
	"github.com/jwebster45206/classroom-sim/pkg/runlog"
)

// Saver persists finished run summaries. It is the only persistence the
// simulation uses; the core never reaches into storage directly.
type Saver interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Save stores a finished run summary.
	Save(ctx context.Context, summary *runlog.Summary) error
}

// Store is a Saver that can also read back what it saved.
type Store interface {
	Saver

	// Load returns a saved summary, or nil if it does not exist.
	Load(ctx context.Context, runID uuid.UUID) (*runlog.Summary, error)

	// List returns the run IDs saved for a scenario, oldest first.
	List(ctx context.Context, scenarioID string) ([]uuid.UUID, error)
}

// New builds the Store for the configured backend.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		r, err := NewRedisStorage(cfg.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
		return r, nil
	case config.BackendSQLite:
		return NewSQLiteStorage(cfg.SQLitePath, logger)
	case config.BackendNone, "":
		return NewMockStorage(), nil
	}
	return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
}
