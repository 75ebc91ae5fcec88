package drift

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evalview/evalview/internal/diff"
)

func TestRecordCheckAndTestHistory(t *testing.T) {
	tracker := NewTracker(t.TempDir(), 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tracker.RecordCheck(ctx, diff.TraceDiff{
			TestName:  "checkout",
			Status:    diff.StatusPassed,
			ScoreDiff: float64(i),
		}, false)
	}
	tracker.RecordCheck(ctx, diff.TraceDiff{TestName: "other", Status: diff.StatusPassed}, false)

	entries := tracker.TestHistory(ctx, "checkout", 0)
	require.Len(t, entries, 3)

	// Newest first.
	require.Equal(t, 2.0, entries[0].ScoreDiff)
	require.Equal(t, 0.0, entries[2].ScoreDiff)
	for _, entry := range entries {
		require.Equal(t, "checkout", entry.TestName)
		require.False(t, entry.Timestamp.IsZero())
	}
}

func TestTestHistoryLimit(t *testing.T) {
	tracker := NewTracker(t.TempDir(), 0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		tracker.RecordCheck(ctx, diff.TraceDiff{TestName: "checkout", ScoreDiff: float64(i)}, false)
	}

	entries := tracker.TestHistory(ctx, "checkout", 2)
	require.Len(t, entries, 2)
	require.Equal(t, 4.0, entries[0].ScoreDiff)
	require.Equal(t, 3.0, entries[1].ScoreDiff)
}

func TestTestHistoryMissingLog(t *testing.T) {
	tracker := NewTracker(t.TempDir(), 0)
	require.Empty(t, tracker.TestHistory(context.Background(), "checkout", 0))
}

func TestTestHistorySkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir, 0)
	ctx := context.Background()

	tracker.RecordCheck(ctx, diff.TraceDiff{TestName: "checkout", ScoreDiff: 1}, false)

	path := filepath.Join(dir, "drift.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	tracker.RecordCheck(ctx, diff.TraceDiff{TestName: "checkout", ScoreDiff: 2}, false)

	entries := tracker.TestHistory(ctx, "checkout", 0)
	require.Len(t, entries, 2)
	require.Equal(t, 2.0, entries[0].ScoreDiff)
	require.Equal(t, 1.0, entries[1].ScoreDiff)
}

func TestPruneKeepsNewestEntries(t *testing.T) {
	dir := t.TempDir()
	maxEntries := 5
	tracker := NewTracker(dir, maxEntries)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		tracker.RecordCheck(ctx, diff.TraceDiff{
			TestName:  "checkout",
			Status:    diff.StatusPassed,
			ScoreDiff: float64(i),
		}, false)
	}

	data, err := os.ReadFile(filepath.Join(dir, "drift.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, maxEntries)

	entries := tracker.TestHistory(ctx, "checkout", 0)
	require.Len(t, entries, maxEntries)
	require.Equal(t, 11.0, entries[0].ScoreDiff)
	require.Equal(t, 7.0, entries[len(entries)-1].ScoreDiff)
}

func TestRecordCheckSurvivesUnwritableDir(t *testing.T) {
	// History is best-effort; a bad path must not panic or abort.
	tracker := NewTracker(filepath.Join(t.TempDir(), "missing", "\x00bad"), 0)
	tracker.RecordCheck(context.Background(), diff.TraceDiff{TestName: "checkout"}, false)
}
