// Package selection tracks which rows of a table are marked selected and
// implements plain and shift-click row toggling.
package selection

import "sort"

// Selector owns the selected-row set of a single table.
//
// Rows are identified by their position in the table. The set is only ever
// mutated through OnRowClicked; everything else is a read-only snapshot.
type Selector struct {
	rows     int
	selected map[int]bool
}

// NewSelector creates a Selector for a table with the given number of rows.
// Preselected indices outside [0, rows) are ignored.
func NewSelector(rows int, preselected ...int) *Selector {
	if rows < 0 {
		rows = 0
	}
	s := &Selector{
		rows:     rows,
		selected: make(map[int]bool),
	}
	for _, i := range preselected {
		if i >= 0 && i < rows {
			s.selected[i] = true
		}
	}
	return s
}

// OnRowClicked applies a click on row index.
//
// A plain click toggles only that row. A shift click walks the table top to
// bottom and extends the run that starts at the first selected row down to
// (and including) the clicked row:
//   - the first selected row is deselected only when the row after it is
//     also selected;
//   - any further selected row met while the run is active is toggled off;
//   - an unselected row is selected when the run is active and the row is at
//     or above the clicked row.
//
// The walk reads the live state, so earlier toggles are visible to later rows.
// A shift click with nothing selected changes nothing. Indices outside the
// table are ignored.
func (s *Selector) OnRowClicked(index int, shift bool) {
	if index < 0 || index >= s.rows {
		return
	}
	if !shift {
		s.toggle(index)
		return
	}

	inRun := false
	for i := 0; i < s.rows; i++ {
		if s.selected[i] {
			if !inRun {
				if s.selected[i+1] {
					s.toggle(i)
				}
			} else {
				s.toggle(i)
			}
			inRun = true
			continue
		}
		if inRun && i <= index {
			s.toggle(i)
		}
	}
}

func (s *Selector) toggle(i int) {
	if s.selected[i] {
		delete(s.selected, i)
		return
	}
	s.selected[i] = true
}

// IsSelected reports whether row i is selected.
func (s *Selector) IsSelected(i int) bool {
	return s.selected[i]
}

// Selected returns the selected row indices in ascending order.
func (s *Selector) Selected() []int {
	out := make([]int, 0, len(s.selected))
	for i := range s.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Count returns the number of selected rows.
func (s *Selector) Count() int {
	return len(s.selected)
}

// Len returns the number of rows in the table.
func (s *Selector) Len() int {
	return s.rows
}
