// Package exporter serializes a fetched record set into the published
// artifacts: a delimited tabular file and a small JSON metadata
// document. Writes are all-or-nothing; a failed run leaves the previous
// run's files untouched.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aviv-k/pr-analytics/internal/domain"
)

const (
	// RecordsFile is the tabular dataset read by the dashboard.
	RecordsFile = "pr_metrics_all_prs.csv"
	// MetadataFile describes the last completed run.
	MetadataFile = "last_update.json"
)

// Header is the column set of the tabular file, in order. The dashboard
// loader depends on these names.
var Header = []string{
	"pr_number", "title", "author",
	"created_at", "merged_at", "closed_at", "state",
	"changed_files", "additions", "deletions",
	"review_count", "comment_count",
	"time_to_merge_hours", "labels",
}

// Writer persists records and metadata under a single output directory.
type Writer struct {
	dir    string
	logger *zap.Logger
}

func NewWriter(dir string, logger *zap.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// WriteRecords writes the full record set to the tabular file, newest
// PR first. The file is staged in the same directory and renamed into
// place only after every row has been written.
func (w *Writer) WriteRecords(records []domain.PullRequestRecord) error {
	sorted := make([]domain.PullRequestRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Number > sorted[j].Number
	})

	err := w.writeAtomic(RecordsFile, func(f *os.File) error {
		cw := csv.NewWriter(f)
		if err := cw.Write(Header); err != nil {
			return err
		}
		for i := range sorted {
			if err := cw.Write(recordRow(&sorted[i])); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	w.logger.Info("wrote tabular file",
		zap.String("path", filepath.Join(w.dir, RecordsFile)),
		zap.Int("records", len(sorted)))
	return nil
}

// WriteMetadata overwrites the metadata document for this run.
func (w *Writer) WriteMetadata(meta domain.UpdateMetadata) error {
	err := w.writeAtomic(MetadataFile, func(f *os.File) error {
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		_, err = f.Write(append(data, '\n'))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	w.logger.Info("wrote metadata",
		zap.String("path", filepath.Join(w.dir, MetadataFile)),
		zap.Int("total_prs", meta.TotalPRs))
	return nil
}

// writeAtomic stages the file next to its destination and renames it
// into place, so readers and a failed run never see a partial file.
func (w *Writer) writeAtomic(name string, write func(*os.File) error) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(w.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(w.dir, name))
}

func recordRow(r *domain.PullRequestRecord) []string {
	mergeHours := ""
	if r.Merged() {
		mergeHours = strconv.FormatFloat(r.TimeToMergeHours, 'f', -1, 64)
	}
	return []string{
		strconv.Itoa(r.Number),
		r.Title,
		r.Author,
		r.CreatedAt.Format(time.RFC3339),
		formatOptional(r.MergedAt),
		formatOptional(r.ClosedAt),
		string(r.State),
		strconv.Itoa(r.ChangedFiles),
		strconv.Itoa(r.Additions),
		strconv.Itoa(r.Deletions),
		strconv.Itoa(r.ReviewCount),
		strconv.Itoa(r.CommentCount),
		mergeHours,
		strings.Join(r.Labels, ","),
	}
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
