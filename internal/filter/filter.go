// Package filter narrows table rows by case-insensitive subsequence match.
//
// Matching is fzf-style: every character of the query must appear in the
// row's search text in order, not necessarily adjacent. The filter selects
// rows only; it never reorders them, so filtered tables keep the order the
// data source produced.
package filter

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// Source is the haystack view of a row list.
type Source interface {
	Len() int
	// SearchText returns the concatenated searchable text of row i.
	SearchText(i int) string
}

// fuzzySource adapts Source to the matcher's input interface.
type fuzzySource struct{ s Source }

func (f fuzzySource) Len() int            { return f.s.Len() }
func (f fuzzySource) String(i int) string { return f.s.SearchText(i) }

// Apply returns the indices of rows matching the query, in the same order
// the rows appear in src. An empty query matches every row.
func Apply(query string, src Source) []int {
	if query == "" {
		idx := make([]int, src.Len())
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	matches := fuzzy.FindFrom(query, fuzzySource{src})

	// The matcher ranks by score; the table wants source order.
	idx := make([]int, len(matches))
	for i, m := range matches {
		idx[i] = m.Index
	}
	sort.Ints(idx)
	return idx
}

// Matches reports whether a single string matches the query.
func Matches(query, text string) bool {
	if query == "" {
		return true
	}
	return len(fuzzy.Find(query, []string{text})) > 0
}
