package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/classroom-sim/pkg/scenario"
)

func openTestSQLite(t *testing.T, path string) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(path, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_Store(t *testing.T) {
	exerciseStore(t, openTestSQLite(t, filepath.Join(t.TempDir(), "runs.db")))
}

func TestSQLiteStorage_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "runs.db")
	s := openTestSQLite(t, path)
	assert.NoError(t, s.Ping(context.Background()))
	assert.FileExists(t, path)
}

func TestSQLiteStorage_ResaveReplacesRow(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "runs.db"))
	ctx := context.Background()

	sum := finishedSummary(t, "social_debate_class")
	require.NoError(t, s.Save(ctx, sum))
	sum.Score[scenario.StudentAssessment] = 7
	require.NoError(t, s.Save(ctx, sum))

	ids, err := s.List(ctx, "social_debate_class")
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	loaded, err := s.Load(ctx, sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Score[scenario.StudentAssessment])
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	first, err := NewSQLiteStorage(path, testLogger())
	require.NoError(t, err)
	sum := finishedSummary(t, "math_fractions")
	require.NoError(t, first.Save(ctx, sum))
	require.NoError(t, first.Close())

	second := openTestSQLite(t, path)
	loaded, err := second.Load(ctx, sum.RunID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sum.ScenarioID, loaded.ScenarioID)
}
