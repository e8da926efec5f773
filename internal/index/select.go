package index

import (
	"regexp"
	"slices"
	"strings"
)

// Select returns the current entry among those whose name matches pattern.
// Matching is unanchored. Candidates are sorted by name and the first one is
// returned, after reversing the order for Descending. Directories never match.
func Select(entries []Entry, pattern *regexp.Regexp, order Order) (Entry, bool) {
	matched := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Dir || !pattern.MatchString(e.Name) {
			continue
		}
		matched = append(matched, e)
	}
	if len(matched) == 0 {
		return Entry{}, false
	}

	slices.SortFunc(matched, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	if order == Descending {
		slices.Reverse(matched)
	}
	return matched[0], true
}
