package pipeline

import (
	"sort"
	"strings"
)

// sortOutcomes orders page outcomes by page index. Concurrent completion
// order carries no meaning; this is the only ordering guarantee the
// pipeline makes.
func sortOutcomes(outcomes []PageOutcome) {
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].PageIndex < outcomes[j].PageIndex
	})
}

// joinOutcomes concatenates page texts in slice order with a newline
// separator and trims the result. Callers sort first; given the same set
// of outcomes the joined text is byte-identical regardless of the
// permutation they arrived in.
func joinOutcomes(outcomes []PageOutcome) string {
	segments := make([]string, len(outcomes))
	for i, o := range outcomes {
		segments[i] = o.Text
	}
	return strings.TrimSpace(strings.Join(segments, "\n"))
}

// failedPages returns the indices of degraded pages in ascending order.
func failedPages(outcomes []PageOutcome) []int {
	var failed []int
	for _, o := range outcomes {
		if !o.Succeeded {
			failed = append(failed, o.PageIndex)
		}
	}
	sort.Ints(failed)
	return failed
}
