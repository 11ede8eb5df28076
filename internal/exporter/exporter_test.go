package exporter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aviv-k/pr-analytics/internal/domain"
)

func testWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	dir := t.TempDir()
	return NewWriter(dir, zap.NewNop()), dir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteRecords_HeaderOrderAndEscaping(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mergedAt := created.Add(30 * time.Minute)

	records := []domain.PullRequestRecord{
		{
			Number:    12,
			Title:     "fix: handle \"quotes\", commas,\nand newlines",
			Author:    "alice",
			CreatedAt: created,
			State:     domain.StateOpen,
			Labels:    []string{"data_contract", "bugfix"},
		},
		{
			Number:           31,
			Title:            "feat: emoji titles 🚀 work too",
			Author:           "bob",
			CreatedAt:        created,
			MergedAt:         &mergedAt,
			ClosedAt:         &mergedAt,
			State:            domain.StateMerged,
			ChangedFiles:     2,
			Additions:        40,
			Deletions:        3,
			ReviewCount:      1,
			CommentCount:     4,
			TimeToMergeHours: 0.5,
		},
	}

	w, dir := testWriter(t)
	require.NoError(t, w.WriteRecords(records))

	rows := readCSV(t, filepath.Join(dir, RecordsFile))
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])

	// Rows are sorted by PR number descending (newest first).
	assert.Equal(t, "31", rows[1][0])
	assert.Equal(t, "12", rows[2][0])

	// Embedded quotes, commas and newlines survive the round trip.
	assert.Equal(t, "fix: handle \"quotes\", commas,\nand newlines", rows[2][1])
	assert.Equal(t, "data_contract,bugfix", rows[2][13])

	// Merged row carries the derived hours; open row leaves them blank.
	assert.Equal(t, "0.5", rows[1][12])
	assert.Equal(t, "", rows[2][12])
	assert.Equal(t, "merged", rows[1][6])
	assert.Equal(t, mergedAt.Format(time.RFC3339), rows[1][4])
}

func TestWriteRecords_EmptySetStillWritesHeader(t *testing.T) {
	w, dir := testWriter(t)
	require.NoError(t, w.WriteRecords(nil))

	rows := readCSV(t, filepath.Join(dir, RecordsFile))
	require.Len(t, rows, 1)
	assert.Equal(t, Header, rows[0])
}

func TestWriteRecords_OverwritesPreviousRun(t *testing.T) {
	w, dir := testWriter(t)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, w.WriteRecords([]domain.PullRequestRecord{
		{Number: 1, Title: "first run", Author: "a", CreatedAt: created, State: domain.StateOpen},
	}))
	require.NoError(t, w.WriteRecords([]domain.PullRequestRecord{
		{Number: 2, Title: "second run", Author: "b", CreatedAt: created, State: domain.StateOpen},
	}))

	rows := readCSV(t, filepath.Join(dir, RecordsFile))
	require.Len(t, rows, 2, "the table is overwritten wholesale, not appended")
	assert.Equal(t, "2", rows[1][0])

	// No stray staging files remain.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteMetadata(t *testing.T) {
	w, dir := testWriter(t)
	now := time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)

	require.NoError(t, w.WriteMetadata(domain.UpdateMetadata{
		LastUpdateTime: now,
		TotalPRs:       42,
		Repository:     "acme/widgets",
		UpdateType:     "full",
	}))

	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2025-06-15T08:30:00Z", got["last_update_time"])
	assert.Equal(t, float64(42), got["total_prs"])
	assert.Equal(t, "acme/widgets", got["repository"])
	assert.Equal(t, "full", got["update_type"])
}

func TestWriter_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	w := NewWriter(dir, zap.NewNop())

	require.NoError(t, w.WriteMetadata(domain.UpdateMetadata{UpdateType: "full"}))
	_, err := os.Stat(filepath.Join(dir, MetadataFile))
	assert.NoError(t, err)
}
