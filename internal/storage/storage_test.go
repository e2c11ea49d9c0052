package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/classroom-sim/internal/config"
	"github.com/jwebster45206/classroom-sim/pkg/runlog"
	"github.com/jwebster45206/classroom-sim/pkg/scenario"
	"github.com/jwebster45206/classroom-sim/pkg/score"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func finishedSummary(t *testing.T, scenarioID string) *runlog.Summary {
	t.Helper()

	s := &scenario.Scenario{ID: scenarioID, Title: "테스트 수업"}
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rec := runlog.New(s, func() time.Time {
		at = at.Add(time.Minute)
		return at
	})
	rec.RecordSelection("n1", "n1:0", "실험 전에 안전 수칙을 안내한다")

	final := score.State{scenario.InstructionalDesign: 5, scenario.ReflectivePractice: -1}
	sum, err := rec.Finish(final, "end_good")
	require.NoError(t, err)
	return sum
}

// exerciseStore runs the behavior every backend shares.
func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, st.Ping(ctx))

	first := finishedSummary(t, "science_lab_safety")
	second := finishedSummary(t, "science_lab_safety")
	other := finishedSummary(t, "math_fractions")
	for _, s := range []*runlog.Summary{first, second, other} {
		require.NoError(t, st.Save(ctx, s))
	}

	loaded, err := st.Load(ctx, first.RunID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, first.RunID, loaded.RunID)
	assert.Equal(t, "end_good", loaded.EndID)
	assert.Equal(t, 5, loaded.Score[scenario.InstructionalDesign])
	assert.Equal(t, -1, loaded.Score[scenario.ReflectivePractice])
	require.Len(t, loaded.Selections, 1)
	assert.Equal(t, "n1:0", loaded.Selections[0].OptionID)
	assert.True(t, loaded.Finished())

	ids, err := st.List(ctx, "science_lab_safety")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.RunID, second.RunID}, ids)

	missing, err := st.Load(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	empty, err := st.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)

	assert.Error(t, st.Save(ctx, nil))
}

func TestNew_Backends(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     *config.Config
		want    any
		wantErr bool
	}{
		{name: "none", cfg: &config.Config{StorageBackend: config.BackendNone}, want: &MockStorage{}},
		{name: "empty defaults to none", cfg: &config.Config{}, want: &MockStorage{}},
		{name: "redis", cfg: &config.Config{StorageBackend: config.BackendRedis, RedisURL: mr.Addr()}, want: &RedisStorage{}},
		{name: "sqlite", cfg: &config.Config{StorageBackend: config.BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "runs.db")}, want: &SQLiteStorage{}},
		{name: "unknown", cfg: &config.Config{StorageBackend: "postgres"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := New(ctx, tt.cfg, testLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer st.Close()
			assert.IsType(t, tt.want, st)
		})
	}
}

func TestNew_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), &config.Config{StorageBackend: config.BackendRedis, RedisURL: addr}, testLogger())
	assert.Error(t, err)
}
