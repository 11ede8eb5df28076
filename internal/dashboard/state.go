// Package dashboard holds the display-side application state: the
// loaded record set, the active filter criteria, and the snapshot
// derived from the currently matching subset. State changes only
// through the explicit transitions Load and Apply, which keeps the
// render pipeline testable without a browser.
package dashboard

import (
	"errors"
	"sort"
	"time"

	"github.com/aviv-k/pr-analytics/internal/domain"
	"github.com/aviv-k/pr-analytics/internal/metrics"
)

// State is the dashboard lifecycle: loading -> ready (filtering cycles
// within ready), or loading -> error when the dataset cannot be read.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// ErrNotReady is returned when filters are applied before a successful
// load.
var ErrNotReady = errors.New("dashboard has no loaded data")

// LabelFilter selects the tagged/untagged partition.
type LabelFilter string

const (
	LabelsAll      LabelFilter = "all"
	LabelsTagged   LabelFilter = "tagged"
	LabelsUntagged LabelFilter = "untagged"
)

// FilterSet is one combination of filter criteria, combined with
// logical AND. The zero value matches every record.
type FilterSet struct {
	// WindowDays bounds creation time to the last N days relative to
	// the app's clock; 0 means unbounded.
	WindowDays int
	// State is "all" (or empty) or one of the domain.PRState values.
	State string
	// Author is "all" (or empty) or an exact author handle.
	Author string
	// Labels selects the label partition; empty means all.
	Labels LabelFilter
}

// RecordSource loads the full record set, typically from the published
// tabular file.
type RecordSource interface {
	LoadRecords() ([]domain.PullRequestRecord, error)
}

// App is the explicit application-state object. It is not safe for
// concurrent use: all transitions are triggered synchronously by
// discrete user actions.
type App struct {
	state    State
	loadErr  error
	records  []domain.PullRequestRecord
	filters  FilterSet
	snapshot domain.MetricsSnapshot
	matcher  metrics.TagMatcher
	now      func() time.Time
}

// NewApp creates an App in the loading state. The clock is injectable
// so date-window filters are testable; nil means time.Now.
func NewApp(matcher metrics.TagMatcher, now func() time.Time) *App {
	if now == nil {
		now = time.Now
	}
	return &App{state: StateLoading, matcher: matcher, now: now}
}

// Load transitions to ready on success or to error on failure. On
// failure no records are retained and no snapshot is available, so a
// renderer cannot show stale values from a prior session.
func (a *App) Load(source RecordSource) error {
	records, err := source.LoadRecords()
	if err != nil {
		a.state = StateError
		a.loadErr = err
		a.records = nil
		a.filters = FilterSet{}
		a.snapshot = domain.MetricsSnapshot{}
		return err
	}
	a.state = StateReady
	a.loadErr = nil
	a.records = records
	a.filters = FilterSet{}
	a.snapshot = metrics.Compute(records)
	return nil
}

// Apply recomputes the snapshot from the subset matching filters. The
// full recompute is idempotent, and the zero FilterSet reproduces the
// unfiltered snapshot exactly.
func (a *App) Apply(filters FilterSet) (domain.MetricsSnapshot, error) {
	if a.state != StateReady {
		return domain.MetricsSnapshot{}, ErrNotReady
	}
	a.filters = filters
	a.snapshot = metrics.Compute(a.matching())
	return a.snapshot, nil
}

// RecentActivity returns the most recent records of the matching
// subset, newest created first, capped at limit.
func (a *App) RecentActivity(limit int) []domain.PullRequestRecord {
	if a.state != StateReady {
		return nil
	}
	recent := a.matching()
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// State reports the current lifecycle state.
func (a *App) State() State { return a.state }

// Err returns the load failure, if any.
func (a *App) Err() error { return a.loadErr }

// Snapshot returns the snapshot for the currently matching subset.
func (a *App) Snapshot() domain.MetricsSnapshot { return a.snapshot }

// Filters returns the active filter criteria.
func (a *App) Filters() FilterSet { return a.filters }

// matching returns the records passing the active filters, preserving
// input order so derived series and tie-breaks stay stable.
func (a *App) matching() []domain.PullRequestRecord {
	matched := make([]domain.PullRequestRecord, 0, len(a.records))
	var cutoff time.Time
	if a.filters.WindowDays > 0 {
		cutoff = a.now().AddDate(0, 0, -a.filters.WindowDays)
	}
	for _, r := range a.records {
		if a.filters.WindowDays > 0 && r.CreatedAt.Before(cutoff) {
			continue
		}
		if s := a.filters.State; s != "" && s != "all" && s != string(r.State) {
			continue
		}
		if au := a.filters.Author; au != "" && au != "all" && au != r.Author {
			continue
		}
		switch a.filters.Labels {
		case LabelsTagged:
			if !a.matcher.Match(r.Labels) {
				continue
			}
		case LabelsUntagged:
			if a.matcher.Match(r.Labels) {
				continue
			}
		}
		matched = append(matched, r)
	}
	return matched
}
