// Package layout computes concrete column widths for a table schema inside
// a viewport. It is schema-driven and knows nothing about row data.
package layout

import "sort"

// Align controls cell justification within a column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Column describes one column of a table schema.
type Column struct {
	ID       string
	Title    string
	MinWidth int
	// MaxWidth caps proportional growth. Zero means unbounded; every page
	// schema marks at least one column unbounded so wide terminals are used.
	MaxWidth int
	Weight   int
	Align    Align
}

// Result holds the computed widths and whether the layout had to shrink any
// column below its minimum to fit the viewport.
type Result struct {
	Widths   map[string]int
	Degraded bool
}

// Total returns the summed column widths plus separators (one space between
// adjacent columns).
func (r Result) Total() int {
	total := 0
	for _, w := range r.Widths {
		total += w
	}
	if n := len(r.Widths); n > 1 {
		total += n - 1
	}
	return total
}

// Compute assigns a width to every column. Each column first gets its
// minimum. If the minimums do not fit, the lowest-weight columns shrink
// first, never below one character, and the result is marked degraded.
// Remaining space is distributed proportionally to weight, capped at each
// column's maximum; space freed by caps goes to uncapped columns in a
// second pass. No column is ever dropped and the total never exceeds the
// viewport.
func Compute(viewportWidth int, cols []Column) Result {
	widths := make(map[string]int, len(cols))
	if len(cols) == 0 {
		return Result{Widths: widths}
	}

	// Separators between columns come out of the viewport budget.
	avail := viewportWidth - (len(cols) - 1)

	sumMin := 0
	for _, c := range cols {
		w := c.MinWidth
		if w < 1 {
			w = 1
		}
		widths[c.ID] = w
		sumMin += w
	}

	if sumMin > avail {
		shrink(avail, cols, widths, sumMin)
		return Result{Widths: widths, Degraded: true}
	}

	grow(avail-sumMin, cols, widths)
	return Result{Widths: widths, Degraded: false}
}

// shrink reduces columns to fit, lowest weight first, floor of one
// character per column. If every column is at the floor and the viewport is
// still too narrow, the widths stay at the floor; the renderer handles that
// case with its too-small notice.
func shrink(avail int, cols []Column, widths map[string]int, total int) {
	order := make([]int, len(cols))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cols[order[a]].Weight < cols[order[b]].Weight
	})

	for _, i := range order {
		if total <= avail {
			return
		}
		c := cols[i]
		excess := total - avail
		give := widths[c.ID] - 1
		if give > excess {
			give = excess
		}
		widths[c.ID] -= give
		total -= give
	}
}

// grow distributes surplus proportionally to weight. Columns that hit their
// maximum return the unused share, which a second pass hands to the columns
// still below their cap.
func grow(surplus int, cols []Column, widths map[string]int) {
	for pass := 0; pass < 2 && surplus > 0; pass++ {
		totalWeight := 0
		for _, c := range cols {
			if !capped(c, widths[c.ID]) {
				totalWeight += c.Weight
			}
		}
		if totalWeight == 0 {
			return
		}

		remaining := surplus
		for _, c := range cols {
			if capped(c, widths[c.ID]) {
				continue
			}
			share := surplus * c.Weight / totalWeight
			if c.MaxWidth > 0 && widths[c.ID]+share > c.MaxWidth {
				share = c.MaxWidth - widths[c.ID]
			}
			widths[c.ID] += share
			remaining -= share
		}
		surplus = remaining
	}

	// Integer division can strand a few cells; hand them to uncapped
	// columns left to right.
	for _, c := range cols {
		if surplus <= 0 {
			return
		}
		if capped(c, widths[c.ID]) {
			continue
		}
		give := surplus
		if c.MaxWidth > 0 && widths[c.ID]+give > c.MaxWidth {
			give = c.MaxWidth - widths[c.ID]
		}
		widths[c.ID] += give
		surplus -= give
	}
}

func capped(c Column, w int) bool {
	return c.MaxWidth > 0 && w >= c.MaxWidth
}

// MinViewport returns the smallest viewport width at which the schema fits
// without degradation.
func MinViewport(cols []Column) int {
	if len(cols) == 0 {
		return 0
	}
	total := len(cols) - 1
	for _, c := range cols {
		w := c.MinWidth
		if w < 1 {
			w = 1
		}
		total += w
	}
	return total
}
