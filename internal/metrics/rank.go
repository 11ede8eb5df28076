package metrics

import (
	"sort"

	"github.com/aviv-k/pr-analytics/internal/domain"
)

// topAuthors ranks authors by PR count descending. The input slice is
// in first-seen order, so a stable sort gives tied authors the earlier
// first appearance as the tie-break.
func topAuthors(authors []domain.AuthorCount) []domain.AuthorCount {
	ranked := make([]domain.AuthorCount, len(authors))
	copy(ranked, authors)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topAuthorLimit {
		ranked = ranked[:topAuthorLimit]
	}
	return ranked
}

// sortedMonths returns the "YYYY-MM" keys in chronological order.
// Lexicographic order on this layout is chronological.
func sortedMonths(byMonth map[string]int) []string {
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}
