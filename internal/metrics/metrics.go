// Package metrics derives aggregate statistics from a collection of
// pull request records. Compute is a pure function of its input: the
// batch write path and the dashboard recompute path both call it and
// must observe identical results for identical input order.
package metrics

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/aviv-k/pr-analytics/internal/domain"
)

// fastMergeThresholdHours separates a "fast" merge from the rest.
const fastMergeThresholdHours = 24.0

// topAuthorLimit caps the author leaderboard.
const topAuthorLimit = 10

// mergeTimeBuckets are half-open on the lower end: a merge time landing
// exactly on a boundary belongs to the higher bucket.
var mergeTimeBuckets = []struct {
	label  string
	lo, hi float64
}{
	{"<1h", 0, 1},
	{"1-24h", 1, 24},
	{"1-7d", 24, 168},
	{"1-4w", 168, 672},
	{">4w", 672, math.Inf(1)},
}

// Compute derives a MetricsSnapshot from records. The input is not
// mutated. An empty input yields zero percentages, an all-zero
// histogram, and empty series; no NaN values are ever produced.
//
// Average merge time is reported as 0 (not null) when no merged records
// exist. Monthly series are sparse: months without PRs are omitted, not
// zero-filled.
func Compute(records []domain.PullRequestRecord) domain.MetricsSnapshot {
	snap := domain.MetricsSnapshot{
		TotalPRs:         len(records),
		MonthlyCreated:   []domain.MonthCount{},
		TopAuthors:       []domain.AuthorCount{},
		MergeTimeBuckets: make([]domain.BucketCount, len(mergeTimeBuckets)),
		CoverageTrend:    []domain.CoveragePoint{},
	}
	for i, b := range mergeTimeBuckets {
		snap.MergeTimeBuckets[i] = domain.BucketCount{Label: b.label}
	}

	var (
		mergeTimes    []float64
		fastMerges    int
		reviewed      int
		monthCreated  = make(map[string]int)
		monthReviewed = make(map[string]int)
		authorIndex   = make(map[string]int)
		authors       []domain.AuthorCount
	)

	for i := range records {
		r := &records[i]

		month := r.CreatedAt.Format("2006-01")
		monthCreated[month]++
		if r.ReviewCount >= 1 {
			reviewed++
			monthReviewed[month]++
		}

		if idx, ok := authorIndex[r.Author]; ok {
			authors[idx].Count++
		} else {
			authorIndex[r.Author] = len(authors)
			authors = append(authors, domain.AuthorCount{Author: r.Author, Count: 1})
		}

		if !r.Merged() {
			continue
		}
		snap.MergedPRs++
		mergeTimes = append(mergeTimes, r.TimeToMergeHours)
		if r.TimeToMergeHours < fastMergeThresholdHours {
			fastMerges++
		}
		for bi, b := range mergeTimeBuckets {
			if r.TimeToMergeHours >= b.lo && r.TimeToMergeHours < b.hi {
				snap.MergeTimeBuckets[bi].Count++
				break
			}
		}
	}

	snap.MergeRate = percentage(snap.MergedPRs, snap.TotalPRs)
	snap.FastMergeRate = percentage(fastMerges, snap.MergedPRs)
	snap.ReviewCoverage = percentage(reviewed, snap.TotalPRs)
	snap.AuthorTotal = len(authors)

	if len(mergeTimes) > 0 {
		// Mean cannot fail on a non-empty slice.
		mean, _ := stats.Mean(mergeTimes)
		snap.AvgMergeTimeHours = mean
	}

	for _, month := range sortedMonths(monthCreated) {
		created := monthCreated[month]
		snap.MonthlyCreated = append(snap.MonthlyCreated, domain.MonthCount{
			Month: month,
			Count: created,
		})
		snap.CoverageTrend = append(snap.CoverageTrend, domain.CoveragePoint{
			Month:    month,
			Coverage: percentage(monthReviewed[month], created),
			Volume:   created,
		})
	}

	snap.TopAuthors = topAuthors(authors)
	return snap
}

// percentage is 0 when the denominator is 0, keeping every rate metric
// inside [0,100] without NaN for empty inputs.
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
