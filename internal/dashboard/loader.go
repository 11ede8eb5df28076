package dashboard

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aviv-k/pr-analytics/internal/domain"
	"github.com/aviv-k/pr-analytics/internal/exporter"
)

// CSVLoader reads the exporter's tabular file back into records. It is
// the load path of the dashboard: a missing, empty, or malformed file
// is a load error, never a partial result.
type CSVLoader struct {
	path string
}

func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{path: path}
}

func (l *CSVLoader) LoadRecords() ([]domain.PullRequestRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("tabular file unavailable: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("tabular file %s is empty", l.path)
		}
		return nil, fmt.Errorf("tabular file %s is malformed: %w", l.path, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, fmt.Errorf("tabular file %s: %w", l.path, err)
	}

	var records []domain.PullRequestRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tabular file %s is malformed: %w", l.path, err)
		}
		record, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("tabular file %s, line %d: %w", l.path, line, err)
		}
		records = append(records, *record)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tabular file %s has no records", l.path)
	}
	return records, nil
}

func checkHeader(header []string) error {
	if len(header) != len(exporter.Header) {
		return fmt.Errorf("unexpected column count %d", len(header))
	}
	for i, name := range exporter.Header {
		if header[i] != name {
			return fmt.Errorf("unexpected column %q at position %d", header[i], i+1)
		}
	}
	return nil
}

func parseRow(row []string) (*domain.PullRequestRecord, error) {
	number, err := strconv.Atoi(row[0])
	if err != nil || number <= 0 {
		return nil, fmt.Errorf("unparseable pr_number %q", row[0])
	}
	createdAt, err := time.Parse(time.RFC3339, row[3])
	if err != nil {
		return nil, fmt.Errorf("unparseable created_at %q", row[3])
	}
	mergedAt, err := parseOptionalTime(row[4])
	if err != nil {
		return nil, fmt.Errorf("unparseable merged_at %q", row[4])
	}
	closedAt, err := parseOptionalTime(row[5])
	if err != nil {
		return nil, fmt.Errorf("unparseable closed_at %q", row[5])
	}

	record := domain.PullRequestRecord{
		Number:       number,
		Title:        row[1],
		Author:       row[2],
		CreatedAt:    createdAt,
		MergedAt:     mergedAt,
		ClosedAt:     closedAt,
		State:        domain.StateFor(closedAt, mergedAt),
		ChangedFiles: parseCount(row[7]),
		Additions:    parseCount(row[8]),
		Deletions:    parseCount(row[9]),
		ReviewCount:  parseCount(row[10]),
		CommentCount: parseCount(row[11]),
	}
	if row[12] != "" {
		hours, err := strconv.ParseFloat(row[12], 64)
		if err != nil {
			return nil, fmt.Errorf("unparseable time_to_merge_hours %q", row[12])
		}
		record.TimeToMergeHours = hours
	}
	if row[13] != "" {
		record.Labels = strings.Split(row[13], ",")
	}
	return &record, nil
}

// parseCount tolerates a blank or garbled counter cell by treating it
// as zero; only identity and timestamp fields are load-fatal.
func parseCount(cell string) int {
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0
	}
	return n
}

func parseOptionalTime(cell string) (*time.Time, error) {
	if cell == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, cell)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
