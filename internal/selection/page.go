package selection

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownTable is returned when a click targets a table the page does not hold.
var ErrUnknownTable = errors.New("unknown table")

// Page holds one Selector per table, keyed by the table's DOM id.
// A click only ever reaches the selector of its own table.
type Page struct {
	mu        sync.Mutex
	order     []string
	selectors map[string]*Selector
}

// NewPage creates an empty Page.
func NewPage() *Page {
	return &Page{selectors: make(map[string]*Selector)}
}

// AddTable registers a table with the given row count and initial selection.
// Registering an id twice replaces the earlier selector.
func (p *Page) AddTable(id string, rows int, preselected ...int) *Selector {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.selectors[id]; !exists {
		p.order = append(p.order, id)
	}
	s := NewSelector(rows, preselected...)
	p.selectors[id] = s
	return s
}

// Click forwards a row click to the table's selector.
func (p *Page) Click(tableID string, index int, shift bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.selectors[tableID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, tableID)
	}
	s.OnRowClicked(index, shift)
	return nil
}

// Selected returns a snapshot of the selected rows of a table.
// Unknown tables yield nil.
func (p *Page) Selected(tableID string) []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.selectors[tableID]
	if !ok {
		return nil
	}
	return s.Selected()
}

// IsSelected reports whether a row of a table is selected.
func (p *Page) IsSelected(tableID string, index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.selectors[tableID]
	return ok && s.IsSelected(index)
}

// Tables returns the table ids in registration order.
func (p *Page) Tables() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Snapshot returns the selected rows of every table that has any.
func (p *Page) Snapshot() map[string][]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string][]int)
	for _, id := range p.order {
		if sel := p.selectors[id].Selected(); len(sel) > 0 {
			out[id] = sel
		}
	}
	return out
}
