// Package page reads and updates the server-rendered page the selection
// handlers operate on: its tables, row selection classes, form fields and the
// display element that echoes server messages.
package page

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/salmonumbrella/xmlsel/internal/selection"
)

const (
	defaultTableSelector = "table"
	defaultRowSelector   = "tr"
	defaultSelectedClass = "selected"
)

// Options controls how tables and rows are located in the markup.
type Options struct {
	TableSelector string
	RowSelector   string
	SelectedClass string
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.TableSelector) == "" {
		o.TableSelector = defaultTableSelector
	}
	if strings.TrimSpace(o.RowSelector) == "" {
		o.RowSelector = defaultRowSelector
	}
	if strings.TrimSpace(o.SelectedClass) == "" {
		o.SelectedClass = defaultSelectedClass
	}
	return o
}

// Row is one data row of a table.
type Row struct {
	Index    int      `json:"index"`
	Cells    []string `json:"cells"`
	Selected bool     `json:"selected"`
}

// FirstCell returns the text of the row's first cell, or "" when it has none.
func (r Row) FirstCell() string {
	if len(r.Cells) == 0 {
		return ""
	}
	return r.Cells[0]
}

// Table is a rendered table identified by its DOM id and grouped by its name.
type Table struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rows []Row  `json:"rows"`

	rows []*goquery.Selection
}

// Key returns the name used to group this table's exported attributes.
// Tables without a name attribute fall back to their id.
func (t *Table) Key() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Form describes a form element on the page.
type Form struct {
	Name   string `json:"name"`
	Action string `json:"action"`
	Method string `json:"method"`
}

// Document is a parsed page.
type Document struct {
	doc    *goquery.Document
	opts   Options
	tables []*Table
}

// Parse reads HTML and indexes its tables.
//
// Only rows with at least one td are data rows; header rows made of th cells
// are skipped so row indices count data rows only. Header rows cannot be
// clicked or selected. Tables without an id get a
// positional id ("table-0", "table-1", ...).
func Parse(r io.Reader, opts Options) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	d := &Document{doc: doc, opts: opts.withDefaults()}
	d.doc.Find(d.opts.TableSelector).Each(func(i int, tbl *goquery.Selection) {
		id, _ := tbl.Attr("id")
		name, _ := tbl.Attr("name")
		if strings.TrimSpace(id) == "" {
			id = fmt.Sprintf("table-%d", i)
		}
		t := &Table{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name)}

		tbl.Find(d.opts.RowSelector).Each(func(_ int, tr *goquery.Selection) {
			// Nested tables index their own rows.
			if tr.Closest("table").Get(0) != tbl.Get(0) {
				return
			}
			cells := tr.ChildrenFiltered("td")
			if cells.Length() == 0 {
				return
			}
			row := Row{
				Index:    len(t.Rows),
				Selected: tr.HasClass(d.opts.SelectedClass),
			}
			cells.Each(func(_ int, td *goquery.Selection) {
				row.Cells = append(row.Cells, strings.TrimSpace(td.Text()))
			})
			t.Rows = append(t.Rows, row)
			t.rows = append(t.rows, tr)
		})
		d.tables = append(d.tables, t)
	})
	return d, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(html string, opts Options) (*Document, error) {
	return Parse(strings.NewReader(html), opts)
}

// Tables returns the page's tables in document order.
func (d *Document) Tables() []*Table {
	return d.tables
}

// Table returns the table with the given id.
func (d *Document) Table(id string) (*Table, bool) {
	for _, t := range d.tables {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Selection seeds a selection page from the rows rendered with the selected class.
func (d *Document) Selection() *selection.Page {
	p := selection.NewPage()
	for _, t := range d.tables {
		var pre []int
		for _, r := range t.Rows {
			if r.Selected {
				pre = append(pre, r.Index)
			}
		}
		p.AddTable(t.ID, len(t.Rows), pre...)
	}
	return p
}

// Apply writes the selection back into the markup as CSS classes.
func (d *Document) Apply(p *selection.Page) {
	for _, t := range d.tables {
		for i, tr := range t.rows {
			on := p.IsSelected(t.ID, i)
			t.Rows[i].Selected = on
			if on {
				tr.AddClass(d.opts.SelectedClass)
			} else {
				tr.RemoveClass(d.opts.SelectedClass)
			}
		}
	}
}

// SelectedRows returns the selected rows of a table as last applied.
func (t *Table) SelectedRows() []Row {
	var out []Row
	for _, r := range t.Rows {
		if r.Selected {
			out = append(out, r)
		}
	}
	return out
}

// FieldValue returns the value attribute of the element with the given id.
func (d *Document) FieldValue(id string) (string, bool) {
	sel := d.doc.Find("#" + id).First()
	if sel.Length() == 0 {
		return "", false
	}
	v, _ := sel.Attr("value")
	return v, true
}

// SetDisplay writes text into both the value and the content of the element
// with the given id. It returns false when the element does not exist.
func (d *Document) SetDisplay(id, text string) bool {
	sel := d.doc.Find("#" + id).First()
	if sel.Length() == 0 {
		return false
	}
	sel.SetAttr("value", text)
	// Void elements cannot hold content.
	if !sel.Is("input") {
		sel.SetText(text)
	}
	return true
}

// Display returns the current content of the element with the given id.
func (d *Document) Display(id string) string {
	sel := d.doc.Find("#" + id).First()
	if sel.Is("input") {
		v, _ := sel.Attr("value")
		return v
	}
	return strings.TrimSpace(sel.Text())
}

// Form looks up a form by its name attribute.
func (d *Document) Form(name string) (Form, bool) {
	sel := d.doc.Find(fmt.Sprintf("form[name=%q]", name)).First()
	if sel.Length() == 0 {
		return Form{}, false
	}
	action, _ := sel.Attr("action")
	method, _ := sel.Attr("method")
	if method == "" {
		method = "GET"
	}
	return Form{Name: name, Action: action, Method: strings.ToUpper(method)}, true
}

// FormValues collects the named fields of a form the way a browser would
// submit them. Unchecked checkboxes and radios, disabled fields and buttons
// are left out.
func (d *Document) FormValues(name string) (url.Values, bool) {
	form := d.doc.Find(fmt.Sprintf("form[name=%q]", name)).First()
	if form.Length() == 0 {
		return nil, false
	}

	values := url.Values{}
	form.Find("input[name], textarea[name], select[name]").Each(func(_ int, f *goquery.Selection) {
		field, _ := f.Attr("name")
		if _, disabled := f.Attr("disabled"); disabled {
			return
		}
		switch {
		case f.Is("textarea"):
			values.Add(field, f.Text())
		case f.Is("select"):
			opt := f.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = f.Find("option").First()
			}
			if opt.Length() > 0 {
				v, ok := opt.Attr("value")
				if !ok {
					v = strings.TrimSpace(opt.Text())
				}
				values.Add(field, v)
			}
		default:
			typ := strings.ToLower(f.AttrOr("type", "text"))
			switch typ {
			case "submit", "button", "reset", "image", "file":
				return
			case "checkbox", "radio":
				if _, checked := f.Attr("checked"); !checked {
					return
				}
				values.Add(field, f.AttrOr("value", "on"))
			default:
				values.Add(field, f.AttrOr("value", ""))
			}
		}
	})
	return values, true
}

// Flashes returns the text of flashed alert messages rendered on the page.
func (d *Document) Flashes() []string {
	var out []string
	d.doc.Find(".alert").Each(func(_ int, s *goquery.Selection) {
		if msg := strings.TrimSpace(s.Text()); msg != "" {
			out = append(out, msg)
		}
	})
	return out
}

// HTML renders the document.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}
