// Package export turns the rows selected on the page into an export request
// and hands it to the server's workbook endpoint.
package export

import (
	"sort"

	"github.com/salmonumbrella/xmlsel/internal/page"
	"github.com/salmonumbrella/xmlsel/internal/selection"
)

// Request maps a table name to the attribute names selected in it.
type Request map[string][]string

// Build collects the first cell of every selected row, grouped by table key.
// Attributes keep the order they first appear in and appear once. Tables
// with nothing selected are left out.
func Build(doc *page.Document, sel *selection.Page) Request {
	req := Request{}
	seen := map[string]map[string]bool{}

	for _, t := range doc.Tables() {
		for _, r := range t.Rows {
			if !sel.IsSelected(t.ID, r.Index) {
				continue
			}
			key := t.Key()
			if seen[key] == nil {
				seen[key] = map[string]bool{}
			}
			attr := r.FirstCell()
			if seen[key][attr] {
				continue
			}
			seen[key][attr] = true
			req[key] = append(req[key], attr)
		}
	}
	return req
}

// Tables returns the request's table names, sorted.
func (r Request) Tables() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether no attribute is selected anywhere.
func (r Request) Empty() bool {
	for _, attrs := range r {
		if len(attrs) > 0 {
			return false
		}
	}
	return true
}
