package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traxovo/attendance-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleStats() model.RunStats {
	stats := model.NewRunStats()
	stats.TotalDriversParsed = 4
	stats.TotalMatched = 3
	stats.TotalExcluded = 1
	stats.ExclusionReasons["Driver not found in Asset List"] = 1
	stats.ClassificationCounts[model.StatusOnTime] = 2
	stats.ClassificationCounts[model.StatusLate] = 1
	return stats
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "2025-05-01")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	artifacts := []model.Artifact{
		{Kind: "report", Path: "/tmp/attendance_report_20250501.json", Checksum: "abc"},
		{Kind: "manifest", Path: "/tmp/attendance_manifest_20250501.txt", Checksum: "def"},
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, sampleStats(), artifacts))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, "2025-05-01", got.TargetDate)
	require.NotNil(t, got.Stats)
	assert.Equal(t, 4, got.Stats.TotalDriversParsed)
	assert.Equal(t, 1, got.Stats.ExclusionReasons["Driver not found in Asset List"])
	require.Len(t, got.Artifacts, 2)
	assert.Equal(t, "report", got.Artifacts[0].Kind)
}

func TestSQLiteStore_FailRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "2025-05-01")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, assert.AnError))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, assert.AnError.Error(), got.Error)
	assert.Nil(t, got.Stats)
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetRun(context.Background(), "no-such-id")
	assert.Error(t, err)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for _, date := range []string{"2025-05-01", "2025-05-02", "2025-05-03"} {
		_, err := s.CreateRun(ctx, date)
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))
}
