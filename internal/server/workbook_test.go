package server

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestSheetName(t *testing.T) {
	long := strings.Repeat("x", 40)
	if got := sheetName(long); len(got) != 31 {
		t.Errorf("len(sheetName) = %d, want 31", len(got))
	}
	if got := sheetName("Order"); got != "Order" {
		t.Errorf("sheetName = %q", got)
	}
}

func TestWorkbookName(t *testing.T) {
	now := time.Date(2024, 3, 7, 9, 5, 1, 0, time.UTC)
	if got := workbookName("orders", now); got != "orders_20240307_090501.xlsx" {
		t.Errorf("workbookName = %q", got)
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	req := map[string][]string{
		"Invoice": {"Amount"},
		"Order":   {"Customer", "OrderID", "Unknown"},
		"Missing": {"X"},
	}

	sheets, err := writeWorkbook(path, DefaultCatalog(), req)
	if err != nil {
		t.Fatalf("writeWorkbook: %v", err)
	}
	if sheets != 2 {
		t.Fatalf("sheets = %d, want 2", sheets)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Order", "Invoice"}) {
		t.Errorf("sheets = %v", got)
	}

	rows, err := f.GetRows("Order")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], []string{"Customer", "OrderID", "Unknown"}) {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "ACME" || rows[1][1] != "1001" {
		t.Errorf("first row = %v", rows[1])
	}

	inv, _ := f.GetRows("Invoice")
	if len(inv) != 2 || inv[1][0] != "129.50" {
		t.Errorf("Invoice rows = %v", inv)
	}
}

func TestWriteWorkbook_NothingSelected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	sheets, err := writeWorkbook(path, DefaultCatalog(), map[string][]string{"Order": {}})
	if err != nil {
		t.Fatalf("writeWorkbook: %v", err)
	}
	if sheets != 0 {
		t.Errorf("sheets = %d", sheets)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written when nothing is selected")
	}
}

func TestWriteWorkbook_ClippedNamesCollide(t *testing.T) {
	prefix := strings.Repeat("A", 31)
	cat := &Catalog{Root: "r", Types: []DocType{
		{Name: prefix + "One", Attributes: []Attribute{{Tag: "x"}}},
		{Name: prefix + "Two", Attributes: []Attribute{{Tag: "x"}}},
	}}
	path := filepath.Join(t.TempDir(), "out.xlsx")
	sheets, err := writeWorkbook(path, cat, map[string][]string{prefix + "One": {"x"}, prefix + "Two": {"x"}})
	if err != nil {
		t.Fatalf("writeWorkbook: %v", err)
	}
	if sheets != 1 {
		t.Errorf("sheets = %d, want 1", sheets)
	}
}
