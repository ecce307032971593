package server

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// NoOutputMessage is flashed when an export request selects nothing usable.
const NoOutputMessage = "No output data extracted - Excel file not created!"

// maxSheetName is the longest sheet name a workbook accepts.
const maxSheetName = 31

// sheetName clips a document type name to a valid sheet name.
func sheetName(name string) string {
	r := []rune(name)
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	return string(r)
}

// workbookName returns "<root>_<YYYYmmdd_HHMMSS>.xlsx".
func workbookName(root string, now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", root, now.Format("20060102_150405"))
}

// writeWorkbook writes one sheet per requested document type, in catalog
// order. Each sheet's header is the requested attributes; the rows below hold
// the extracted values. Unknown types are skipped. It returns the number of
// sheets written; nothing is saved when that is zero.
func writeWorkbook(path string, cat *Catalog, req map[string][]string) (int, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const initial = "Sheet1"
	sheets := 0
	used := map[string]bool{}

	for i := range cat.Types {
		t := &cat.Types[i]
		attrs := req[t.Name]
		if len(attrs) == 0 {
			continue
		}
		name := sheetName(t.Name)
		if used[name] {
			continue
		}
		used[name] = true

		var err error
		if sheets == 0 {
			err = f.SetSheetName(initial, name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return 0, fmt.Errorf("create sheet %q: %w", name, err)
		}

		header := make([]interface{}, len(attrs))
		columns := make([][]string, len(attrs))
		depth := 0
		for j, a := range attrs {
			header[j] = a
			columns[j] = t.Values(a)
			if len(columns[j]) > depth {
				depth = len(columns[j])
			}
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return 0, fmt.Errorf("write header of %q: %w", name, err)
		}

		for row := 0; row < depth; row++ {
			values := make([]interface{}, len(columns))
			for j, col := range columns {
				if row < len(col) {
					values[j] = col[row]
				} else {
					values[j] = ""
				}
			}
			cell, err := excelize.CoordinatesToCellName(1, row+2)
			if err != nil {
				return 0, err
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return 0, fmt.Errorf("write row %d of %q: %w", row+2, name, err)
			}
		}
		sheets++
	}

	if sheets == 0 {
		return 0, nil
	}
	f.SetActiveSheet(0)
	if err := f.SaveAs(filepath.Clean(path)); err != nil {
		return 0, fmt.Errorf("save workbook: %w", err)
	}
	return sheets, nil
}
