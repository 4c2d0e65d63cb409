package page

import "github.com/proxytop/proxytop/internal/filter"

// ViewModel holds the mutable presentation state of one view: the last
// good row set, the active filter, and the scroll offset. All methods are
// called from the single update loop; there is no internal locking.
type ViewModel struct {
	rows     []Row
	visible  []int // indices into rows after filtering, provider order
	query    string
	offset   int
	viewport int // table height in rows, set on every resize
	stale    bool // last fetch failed, rows kept from before
}

// Len implements filter.Source.
func (vm *ViewModel) Len() int { return len(vm.rows) }

// SearchText implements filter.Source.
func (vm *ViewModel) SearchText(i int) string { return vm.rows[i].SearchText }

// ApplyData replaces the row set, re-applies the current filter, and clamps
// the scroll offset so the viewport never points past the end.
func (vm *ViewModel) ApplyData(rows []Row) {
	vm.rows = rows
	vm.stale = false
	vm.refilter()
}

// Amend applies fn to every stored row in place and re-applies the filter,
// since fn may extend a row's search text.
func (vm *ViewModel) Amend(fn func(*Row)) {
	for i := range vm.rows {
		fn(&vm.rows[i])
	}
	vm.refilter()
}

// SetViewport records the table height. The offset ceiling follows it: the
// last viewport stays full rather than draining to a single row.
func (vm *ViewModel) SetViewport(rows int) {
	if rows < 1 {
		rows = 1
	}
	vm.viewport = rows
	vm.clamp()
}

// MarkStale flags a failed refresh. The previous rows stay on screen.
func (vm *ViewModel) MarkStale() { vm.stale = true }

// Stale reports whether the rows predate the last refresh attempt.
func (vm *ViewModel) Stale() bool { return vm.stale }

// ApplyFilter sets the filter query. Changing the query jumps back to the
// top; re-applying the same query keeps the offset (clamped).
func (vm *ViewModel) ApplyFilter(query string) {
	if query != vm.query {
		vm.offset = 0
	}
	vm.query = query
	vm.refilter()
}

// Query returns the active filter query.
func (vm *ViewModel) Query() string { return vm.query }

func (vm *ViewModel) refilter() {
	vm.visible = filter.Apply(vm.query, vm)
	vm.clamp()
}

// clamp bounds the offset to [0, len(visible)-viewport] so scrolling can
// never leave the viewport emptier than the filtered set allows.
func (vm *ViewModel) clamp() {
	vp := vm.viewport
	if vp < 1 {
		vp = 1
	}
	max := len(vm.visible) - vp
	if max < 0 {
		max = 0
	}
	if vm.offset > max {
		vm.offset = max
	}
	if vm.offset < 0 {
		vm.offset = 0
	}
}

// Scroll moves the offset by delta rows, clamped to the filtered set.
func (vm *ViewModel) Scroll(delta int) {
	vm.offset += delta
	vm.clamp()
}

// PageUp moves up one viewport of rows.
func (vm *ViewModel) PageUp(pageSize int) { vm.Scroll(-pageSize) }

// PageDown moves down one viewport of rows.
func (vm *ViewModel) PageDown(pageSize int) { vm.Scroll(pageSize) }

// JumpTop scrolls to the first row.
func (vm *ViewModel) JumpTop() { vm.offset = 0 }

// JumpBottom scrolls so the last page of rows fills the viewport.
func (vm *ViewModel) JumpBottom() {
	vm.offset = len(vm.visible)
	vm.clamp()
}

// Offset returns the current scroll offset into the filtered set.
func (vm *ViewModel) Offset() int { return vm.offset }

// VisibleLen returns the filtered row count.
func (vm *ViewModel) VisibleLen() int { return len(vm.visible) }

// TotalLen returns the unfiltered row count.
func (vm *ViewModel) TotalLen() int { return len(vm.rows) }

// Window returns up to height filtered rows starting at the scroll offset.
func (vm *ViewModel) Window(height int) []Row {
	if height <= 0 || vm.offset >= len(vm.visible) {
		return nil
	}
	end := vm.offset + height
	if end > len(vm.visible) {
		end = len(vm.visible)
	}
	out := make([]Row, 0, end-vm.offset)
	for _, i := range vm.visible[vm.offset:end] {
		out = append(out, vm.rows[i])
	}
	return out
}

// Rows returns all filtered rows in provider order.
func (vm *ViewModel) Rows() []Row {
	out := make([]Row, 0, len(vm.visible))
	for _, i := range vm.visible {
		out = append(out, vm.rows[i])
	}
	return out
}
