package export

import (
	"reflect"
	"testing"

	"github.com/salmonumbrella/xmlsel/internal/page"
)

const twoTables = `<html><body>
<table id="t_order" name="Order">
  <tr><th>Tag</th></tr>
  <tr><td>OrderID</td></tr>
  <tr><td>Customer</td></tr>
  <tr><td>Customer</td></tr>
  <tr><td>Line</td></tr>
</table>
<table id="t_invoice" name="Invoice">
  <tr><td>InvoiceNo</td></tr>
  <tr><td>Amount</td></tr>
</table>
<table id="t_unused" name="Unused">
  <tr><td>Nothing</td></tr>
</table>
</body></html>`

func parse(t *testing.T, html string) *page.Document {
	t.Helper()
	doc, err := page.ParseString(html, page.Options{})
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return doc
}

func TestBuild_TwoTables(t *testing.T) {
	doc := parse(t, twoTables)
	sel := doc.Selection()

	for _, c := range []struct {
		table string
		row   int
		shift bool
	}{
		{"t_order", 1, false},
		{"t_order", 2, true},
		{"t_invoice", 1, false},
	} {
		if err := sel.Click(c.table, c.row, c.shift); err != nil {
			t.Fatalf("Click: %v", err)
		}
	}

	req := Build(doc, sel)
	want := Request{
		"Order":   {"Customer"},
		"Invoice": {"Amount"},
	}
	if !reflect.DeepEqual(req, want) {
		t.Fatalf("Build = %v, want %v", req, want)
	}
	if got := req.Tables(); !reflect.DeepEqual(got, []string{"Invoice", "Order"}) {
		t.Errorf("Tables = %v", got)
	}
}

func TestBuild_OrderOfFirstAppearance(t *testing.T) {
	doc := parse(t, twoTables)
	sel := doc.Selection()
	for _, row := range []int{3, 0, 1} {
		_ = sel.Click("t_order", row, false)
	}

	req := Build(doc, sel)
	if got := req["Order"]; !reflect.DeepEqual(got, []string{"OrderID", "Customer", "Line"}) {
		t.Errorf("Order = %v", got)
	}
}

func TestBuild_NamelessTableUsesID(t *testing.T) {
	doc := parse(t, `<table id="plain"><tr class="selected"><td>A</td></tr></table>`)
	req := Build(doc, doc.Selection())
	if got := req["plain"]; !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("Build = %v", req)
	}
}

func TestBuild_SameNameTablesMerge(t *testing.T) {
	doc := parse(t, `
<table id="a" name="Shared"><tr class="selected"><td>X</td></tr></table>
<table id="b" name="Shared"><tr class="selected"><td>X</td></tr><tr class="selected"><td>Y</td></tr></table>`)
	req := Build(doc, doc.Selection())
	if got := req["Shared"]; !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Errorf("Shared = %v", got)
	}
}

func TestBuild_Empty(t *testing.T) {
	doc := parse(t, twoTables)
	req := Build(doc, doc.Selection())
	if len(req) != 0 || !req.Empty() {
		t.Errorf("Build with nothing selected = %v", req)
	}
	if (Request{"x": nil}).Empty() != true {
		t.Error("table without attributes should count as empty")
	}
}
