package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	base := t.TempDir()
	fm := NewFileManager(
		filepath.Join(base, "input"),
		filepath.Join(base, "archive"),
		filepath.Join(base, "reports"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func TestNewestInput(t *testing.T) {
	fm := newTestManager(t)

	older := filepath.Join(fm.InputDir, "older.csv")
	newer := filepath.Join(fm.InputDir, "newer.csv")
	require.NoError(t, os.WriteFile(older, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("b"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	found, err := fm.NewestInput("*.csv")
	require.NoError(t, err)
	assert.Equal(t, newer, found)
}

func TestNewestInputEmptyDir(t *testing.T) {
	fm := newTestManager(t)

	_, err := fm.NewestInput("*.csv")
	assert.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	fm := newTestManager(t)

	path := filepath.Join(fm.InputDir, "funding.csv")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	archived, err := fm.ArchiveInputFile(path)
	require.NoError(t, err)

	assert.False(t, FileExists(path))
	assert.True(t, FileExists(archived))
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "funding.csv"), archived)
}

func TestArchiveInputFileNameCollision(t *testing.T) {
	fm := newTestManager(t)

	existing := filepath.Join(fm.InputArchiveDir, "funding.csv")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	path := filepath.Join(fm.InputDir, "funding.csv")
	require.NoError(t, os.WriteFile(path, []byte("new"), 0o644))

	archived, err := fm.ArchiveInputFile(path)
	require.NoError(t, err)

	assert.NotEqual(t, existing, archived)
	assert.True(t, FileExists(existing))
	assert.True(t, FileExists(archived))
}

func TestWriteRunReport(t *testing.T) {
	fm := newTestManager(t)

	summary := RunSummary{
		RunID:      NewRunID(),
		StartedAt:  time.Date(2025, time.November, 15, 9, 0, 0, 0, time.UTC),
		Duration:   3 * time.Second,
		CSVFile:    "input/funding.csv",
		FormFile:   "claim_form.xlsx",
		RowsFound:  4,
		Filled:     2,
		Unmatched:  1,
		Skipped:    1,
		StatusLine: "Filled 2 of 4 rows (1 unmatched, 0 without key, 1 skipped, 0 errors)",
	}
	unmatched := []UnmatchedEntry{
		{RowNumber: 3, Identifier: "C56", Reason: "no match"},
	}

	path, err := fm.WriteRunReport(summary, unmatched)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), summary.RunID)
	assert.Contains(t, string(content), "Filled:      2")

	matches, err := filepath.Glob(filepath.Join(fm.ReportDir, "*_unmatched.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	list, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(list), "3,C56,no match")
}

func TestWriteRunReportWithoutUnmatched(t *testing.T) {
	fm := newTestManager(t)

	_, err := fm.WriteRunReport(RunSummary{RunID: NewRunID(), StartedAt: time.Now()}, nil)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(fm.ReportDir, "*_unmatched.csv"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWriteDiagnosticsLog(t *testing.T) {
	fm := newTestManager(t)

	path, err := fm.WriteDiagnosticsLog("run-1", "2 validation error(s)")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2 validation error(s)", string(content))
}
