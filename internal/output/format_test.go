package output

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"table", FormatTable, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type selectionOut struct {
	Table    string `json:"table"`
	Selected []int  `json:"selected"`
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := NewPrinter(&buf, FormatJSON).Print(context.Background(), selectionOut{Table: "tbl_order", Selected: []int{0, 2}})
	if err != nil {
		t.Fatalf("Print: %v", err)
	}
	want := "{\n  \"table\": \"tbl_order\",\n  \"selected\": [\n    0,\n    2\n  ]\n}\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPrinter_CompactJSON(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithCompactJSON(context.Background(), true)
	if err := NewPrinter(&buf, FormatJSON).Print(ctx, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"a\":1}\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestPrinter_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatYAML).Print(context.Background(), map[string][]string{"Order": {"Customer"}}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Order:\n  - Customer\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestPrinter_TextMap(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]interface{}{"status": "ok", "tables": []string{"Order"}}
	if err := NewPrinter(&buf, FormatText).Print(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "status:") || !strings.HasSuffix(lines[0], "ok") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], `["Order"]`) {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestPrinter_TextString(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatText).Print(context.Background(), "OK"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "OK\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{Headers: []string{"ROW", "CELL"}, Rows: [][]string{{"0", "OrderID"}, {"1", "Customer"}}}
	if err := NewPrinter(&buf, FormatTable).Print(context.Background(), tbl); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "ROW") || !strings.Contains(lines[2], "Customer") {
		t.Errorf("table = %q", buf.String())
	}
}

func TestPrinter_TableFromList(t *testing.T) {
	var buf bytes.Buffer
	data := []selectionOut{{Table: "a", Selected: []int{1}}, {Table: "b"}}
	if err := NewPrinter(&buf, FormatTable).Print(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "SELECTED") || !strings.Contains(out, "TABLE") || !strings.Contains(out, "[1]") {
		t.Errorf("table = %q", out)
	}
}

func TestPrinter_Query(t *testing.T) {
	data := map[string][]string{"Order": {"Customer", "OrderID"}, "Invoice": {"Amount"}}

	var buf bytes.Buffer
	ctx := WithQuery(context.Background(), ".Order[]")
	if err := NewPrinter(&buf, FormatJSON).Print(ctx, data); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\"Customer\"\n\"OrderID\"\n" {
		t.Errorf("json query = %q", buf.String())
	}

	buf.Reset()
	ctx = WithQuery(context.Background(), ".Invoice[0]")
	if err := NewPrinter(&buf, FormatText).Print(ctx, data); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Amount\n" {
		t.Errorf("text query = %q", buf.String())
	}
}

func TestPrinter_InvalidQuery(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithQuery(context.Background(), ".Order[")
	err := NewPrinter(&buf, FormatJSON).Print(ctx, map[string]int{})
	if err == nil || !strings.Contains(err.Error(), "invalid --query") {
		t.Errorf("err = %v", err)
	}
	if ValidateQuery(".Order[") == nil {
		t.Error("ValidateQuery should reject an incomplete query")
	}
	if ValidateQuery(".a | keys") != nil {
		t.Error("ValidateQuery rejected a valid query")
	}
}

func TestPrinter_NilIsSilent(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatJSON).Print(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("got %q", buf.String())
	}
}
