// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// PRState classifies a pull request's lifecycle position.
// Merged implies closed; the state is fully determined by which
// lifecycle timestamps are present.
type PRState string

const (
	StateOpen   PRState = "open"
	StateClosed PRState = "closed"
	StateMerged PRState = "merged"
)

// PullRequestRecord is one flattened pull request as fetched from the
// hosting API. It is the core domain entity of this application and is
// immutable once written to the tabular file.
type PullRequestRecord struct {
	Number           int        `json:"number"`
	Title            string     `json:"title"`
	Author           string     `json:"author"`
	CreatedAt        time.Time  `json:"created_at"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	MergedAt         *time.Time `json:"merged_at,omitempty"`
	State            PRState    `json:"state"`
	ChangedFiles     int        `json:"changed_files"`
	Additions        int        `json:"additions"`
	Deletions        int        `json:"deletions"`
	ReviewCount      int        `json:"review_count"`
	CommentCount     int        `json:"comment_count"`
	TimeToMergeHours float64    `json:"time_to_merge_hours"` // defined only when State == StateMerged
	Labels           []string   `json:"labels,omitempty"`
}

// Merged reports whether the record reached the merged state.
func (r *PullRequestRecord) Merged() bool {
	return r.State == StateMerged
}

// StateFor derives the lifecycle state from the presence of the
// closed/merged timestamps.
func StateFor(closedAt, mergedAt *time.Time) PRState {
	switch {
	case mergedAt != nil:
		return StateMerged
	case closedAt != nil:
		return StateClosed
	default:
		return StateOpen
	}
}

// MonthCount is one point of a sparse monthly series. Month is
// formatted "YYYY-MM" and series are ordered chronologically ascending.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// AuthorCount is one row of the author leaderboard.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// BucketCount is one bar of the merge-time histogram.
type BucketCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CoveragePoint pairs a month's review coverage with its PR volume,
// feeding the dual-axis trend chart.
type CoveragePoint struct {
	Month    string  `json:"month"`
	Coverage float64 `json:"coverage"`
	Volume   int     `json:"volume"`
}

// MetricsSnapshot holds every aggregate derived from a record set.
// It is recomputed on every run and never persisted as a source of
// truth; only its KPI subset reaches the metadata file.
type MetricsSnapshot struct {
	TotalPRs          int             `json:"total_prs"`
	MergedPRs         int             `json:"merged_prs"`
	MergeRate         float64         `json:"merge_rate"`
	AvgMergeTimeHours float64         `json:"avg_merge_time_hours"`
	FastMergeRate     float64         `json:"fast_merge_rate"`
	ReviewCoverage    float64         `json:"review_coverage"`
	AuthorTotal       int             `json:"author_total"`
	MonthlyCreated    []MonthCount    `json:"monthly_created"`
	TopAuthors        []AuthorCount   `json:"top_authors"`
	MergeTimeBuckets  []BucketCount   `json:"merge_time_buckets"`
	CoverageTrend     []CoveragePoint `json:"coverage_trend"`
}

// UpdateMetadata describes the last completed run. It is overwritten
// wholesale each run and read once by the dashboard at load time.
type UpdateMetadata struct {
	LastUpdateTime time.Time `json:"last_update_time"`
	TotalPRs       int       `json:"total_prs"`
	Repository     string    `json:"repository"`
	UpdateType     string    `json:"update_type"`
}
