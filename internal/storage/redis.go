package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/classroom-sim/pkg/runlog"
)

// LatestKey holds the most recently saved summary.
const LatestKey = "teacher-sim-log"

// RedisStorage implements Store using Redis.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration // Zero keeps summaries forever
}

// Ensure RedisStorage implements Store interface
var _ Store = (*RedisStorage)(nil)

// NewRedisStorage creates a Redis store. redisURL is either "host:port" or a
// redis:// URL.
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	opt := &redis.Options{Addr: redisURL}
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opt = parsed
	}

	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

// WithTTL sets an expiration on saved summaries.
func (r *RedisStorage) WithTTL(ttl time.Duration) *RedisStorage {
	r.ttl = ttl
	return r
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

func summaryKey(id uuid.UUID) string {
	return "summary:" + id.String()
}

func scenarioKey(scenarioID string) string {
	return "summaries:" + scenarioID
}

func (r *RedisStorage) Save(ctx context.Context, summary *runlog.Summary) error {
	if summary == nil {
		return errors.New("summary cannot be nil")
	}

	data, err := json.Marshal(summary)
	if err != nil {
		r.logger.Error("Failed to marshal summary", "run_id", summary.RunID, "error", err)
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	existing, err := r.client.Exists(ctx, summaryKey(summary.RunID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check summary: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, summaryKey(summary.RunID), data, r.ttl)
		if existing == 0 {
			pipe.RPush(ctx, scenarioKey(summary.ScenarioID), summary.RunID.String())
		}
		pipe.Set(ctx, LatestKey, data, 0)
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save summary", "run_id", summary.RunID, "error", err)
		return fmt.Errorf("failed to save summary: %w", err)
	}

	r.logger.Debug("Summary saved", "run_id", summary.RunID, "scenario_id", summary.ScenarioID)
	return nil
}

func (r *RedisStorage) Load(ctx context.Context, runID uuid.UUID) (*runlog.Summary, error) {
	data, err := r.client.Get(ctx, summaryKey(runID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Summary not found", "run_id", runID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	var s runlog.Summary
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &s, nil
}

func (r *RedisStorage) List(ctx context.Context, scenarioID string) ([]uuid.UUID, error) {
	vals, err := r.client.LRange(ctx, scenarioKey(scenarioID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(vals))
	for _, v := range vals {
		id, err := uuid.Parse(v)
		if err != nil {
			r.logger.Warn("Skipping malformed run id", "value", v, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
