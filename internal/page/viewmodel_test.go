package page

import (
	"fmt"
	"testing"
)

func testRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		name := fmt.Sprintf("user%02d", i)
		rows[i] = Row{Cells: []string{name}, SearchText: name}
	}
	return rows
}

// =============================================================================
// Filtering
// =============================================================================

func TestViewModel_ApplyFilter(t *testing.T) {
	var vm ViewModel
	vm.ApplyData([]Row{
		{Cells: []string{"app_user"}, SearchText: "app_user 10.0.1.5"},
		{Cells: []string{"batch"}, SearchText: "batch 10.0.2.9"},
		{Cells: []string{"app_ro"}, SearchText: "app_ro 10.0.1.6"},
	})

	vm.ApplyFilter("app")
	if got := vm.VisibleLen(); got != 2 {
		t.Fatalf("VisibleLen = %d, want 2", got)
	}
	rows := vm.Rows()
	if rows[0].Cells[0] != "app_user" || rows[1].Cells[0] != "app_ro" {
		t.Errorf("filtered rows out of provider order: %v, %v",
			rows[0].Cells[0], rows[1].Cells[0])
	}

	vm.ApplyFilter("")
	if got := vm.VisibleLen(); got != 3 {
		t.Errorf("clearing filter: VisibleLen = %d, want 3", got)
	}
}

func TestViewModel_FilterSurvivesApplyData(t *testing.T) {
	var vm ViewModel
	vm.ApplyData(testRows(5))
	vm.ApplyFilter("user00")

	// A refresh lands while the filter is active.
	vm.ApplyData(testRows(8))
	if got := vm.VisibleLen(); got != 1 {
		t.Errorf("filter not re-applied after refresh: VisibleLen = %d, want 1", got)
	}
	if got := vm.Query(); got != "user00" {
		t.Errorf("query lost after refresh: %q", got)
	}
}

func TestViewModel_AmendRewritesSearchText(t *testing.T) {
	var vm ViewModel
	vm.ApplyData([]Row{
		{Cells: []string{"10.0.1.5"}, SearchText: "10.0.1.5"},
		{Cells: []string{"10.0.2.9"}, SearchText: "10.0.2.9"},
	})

	vm.Amend(func(r *Row) {
		if r.Cells[0] == "10.0.1.5" {
			r.Cells[0] = "10.0.1.5 (db-app-01)"
			r.SearchText += " db-app-01"
		}
	})

	vm.ApplyFilter("db-app")
	if got := vm.VisibleLen(); got != 1 {
		t.Fatalf("filter on amended text: VisibleLen = %d, want 1", got)
	}
	if got := vm.Rows()[0].Cells[0]; got != "10.0.1.5 (db-app-01)" {
		t.Errorf("amended cell = %q", got)
	}
}

// =============================================================================
// Scrolling
// =============================================================================

func TestViewModel_ScrollClamps(t *testing.T) {
	var vm ViewModel
	vm.SetViewport(4)
	vm.ApplyData(testRows(10))

	vm.Scroll(-5)
	if vm.Offset() != 0 {
		t.Errorf("scroll above top: offset = %d, want 0", vm.Offset())
	}

	vm.Scroll(100)
	if vm.Offset() != 6 {
		t.Errorf("scroll past end: offset = %d, want 6", vm.Offset())
	}

	vm.JumpTop()
	if vm.Offset() != 0 {
		t.Errorf("JumpTop: offset = %d, want 0", vm.Offset())
	}

	vm.JumpBottom()
	if vm.Offset() != 6 {
		t.Errorf("JumpBottom: offset = %d, want 6", vm.Offset())
	}

	vm.PageUp(4)
	if vm.Offset() != 2 {
		t.Errorf("PageUp(4): offset = %d, want 2", vm.Offset())
	}
	vm.PageDown(100)
	if vm.Offset() != 6 {
		t.Errorf("PageDown past end: offset = %d, want 6", vm.Offset())
	}
}

func TestViewModel_ScrollKeepsViewportFull(t *testing.T) {
	var vm ViewModel
	vm.SetViewport(5)
	vm.ApplyData(testRows(10))

	for i := 0; i < 20; i++ {
		vm.Scroll(1)
	}
	if vm.Offset() != 5 {
		t.Fatalf("offset after overscroll = %d, want 5", vm.Offset())
	}
	if win := vm.Window(5); len(win) != 5 {
		t.Errorf("window at bottom holds %d rows, want 5", len(win))
	}

	// Shrinking the terminal raises the ceiling; growing it lowers the
	// offset again.
	vm.SetViewport(2)
	vm.Scroll(100)
	if vm.Offset() != 8 {
		t.Errorf("offset with viewport 2 = %d, want 8", vm.Offset())
	}
	vm.SetViewport(8)
	if vm.Offset() != 2 {
		t.Errorf("offset after growing viewport = %d, want 2", vm.Offset())
	}
}

func TestViewModel_OffsetClampedWhenRowsShrink(t *testing.T) {
	var vm ViewModel
	vm.ApplyData(testRows(50))
	vm.Scroll(40)

	vm.ApplyData(testRows(5))
	if got := vm.Offset(); got != 4 {
		t.Errorf("offset after shrink = %d, want 4", got)
	}
}

func TestViewModel_NewQueryResetsOffset(t *testing.T) {
	var vm ViewModel
	vm.ApplyData(testRows(30))
	vm.Scroll(20)

	vm.ApplyFilter("user")
	if got := vm.Offset(); got != 0 {
		t.Errorf("offset after new query = %d, want 0", got)
	}
}

// =============================================================================
// Window
// =============================================================================

func TestViewModel_Window(t *testing.T) {
	var vm ViewModel
	vm.ApplyData(testRows(10))
	vm.Scroll(7)

	win := vm.Window(5)
	if len(win) != 3 {
		t.Fatalf("Window(5) at offset 7 of 10: len = %d, want 3", len(win))
	}
	if win[0].Cells[0] != "user07" {
		t.Errorf("first visible row = %q, want user07", win[0].Cells[0])
	}

	if win := vm.Window(0); win != nil {
		t.Errorf("Window(0) = %v, want nil", win)
	}
}

func TestViewModel_EmptyRows(t *testing.T) {
	var vm ViewModel
	vm.ApplyData(nil)

	vm.Scroll(3)
	if vm.Offset() != 0 {
		t.Errorf("offset on empty rows = %d, want 0", vm.Offset())
	}
	if win := vm.Window(10); win != nil {
		t.Errorf("Window on empty rows = %v, want nil", win)
	}
}

// =============================================================================
// Staleness
// =============================================================================

func TestViewModel_MarkStaleKeepsRows(t *testing.T) {
	var vm ViewModel
	vm.ApplyData(testRows(3))

	vm.MarkStale()
	if !vm.Stale() {
		t.Error("Stale() = false after MarkStale")
	}
	if vm.TotalLen() != 3 {
		t.Errorf("rows dropped on stale: TotalLen = %d, want 3", vm.TotalLen())
	}

	vm.ApplyData(testRows(4))
	if vm.Stale() {
		t.Error("Stale() = true after successful refresh")
	}
}

// =============================================================================
// Catalog shape
// =============================================================================

func TestCatalog(t *testing.T) {
	pages := Catalog()
	if len(pages) != 5 {
		t.Fatalf("page count = %d, want 5", len(pages))
	}

	seen := map[ViewID]bool{}
	for _, p := range pages {
		if len(p.Views) == 0 {
			t.Errorf("page %s has no views", p.ID)
		}
		for _, v := range p.Views {
			if seen[v.ID] {
				t.Errorf("duplicate view id %s", v.ID)
			}
			seen[v.ID] = true
			for _, c := range v.Columns {
				if c.MinWidth < 1 {
					t.Errorf("view %s column %s: MinWidth %d", v.ID, c.ID, c.MinWidth)
				}
				if c.Weight < 1 {
					t.Errorf("view %s column %s: Weight %d", v.ID, c.ID, c.Weight)
				}
			}
		}
	}

	if len(pages[0].Views) != 5 {
		t.Errorf("frontend sub-pages = %d, want 5", len(pages[0].Views))
	}
	if len(pages[2].Views) != 7 {
		t.Errorf("runtime sub-pages = %d, want 7", len(pages[2].Views))
	}
}
