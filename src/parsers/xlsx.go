// backend/src/parsers/xlsx.go
package parsers

import (
	"fmt"
	"io"

	"github.com/username/cashrecon/backend/src/models"
	"github.com/xuri/excelize/v2"
)

// WorkbookKind classifies a whole uploaded workbook so the HTTP handler
// can accept the three exports in any order.
type WorkbookKind string

const (
	WorkbookHotcakeBills  WorkbookKind = "hotcake_bills"
	WorkbookHotcakeOrders WorkbookKind = "hotcake_orders"
	WorkbookPosOrders     WorkbookKind = "pos_orders"
	WorkbookUnknown       WorkbookKind = "unknown"
)

// LoadWorkbookTables reads every sheet of an xlsx stream into Tables.
// Formula cells come back with their computed values.
func LoadWorkbookTables(r io.Reader) ([]models.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()
	return workbookTables(f)
}

// LoadWorkbookFile is the path-based variant used by the CLI.
func LoadWorkbookFile(path string) ([]models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx %s: %w", path, err)
	}
	defer f.Close()
	return workbookTables(f)
}

func workbookTables(f *excelize.File) ([]models.Table, error) {
	var tables []models.Table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		tables = append(tables, models.Table{Sheet: sheet, Rows: rows})
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return tables, nil
}

// DetectWorkbookKind classifies a workbook by detecting the shape of
// each sheet. A workbook with any order sheet is the order report; one
// with a POS sheet is the register export; one with bill or topup
// sheets is the bill ledger. Sheets that match no shape are tolerated
// here (cover pages, pivot leftovers) as long as one sheet resolves.
func DetectWorkbookKind(tables []models.Table) WorkbookKind {
	kind := WorkbookUnknown
	for _, t := range tables {
		det, err := DetectShape(t)
		if err != nil {
			continue
		}
		switch det.Shape {
		case ShapeOrder:
			return WorkbookHotcakeOrders
		case ShapePos:
			kind = WorkbookPosOrders
		case ShapeServiceBill, ShapeTopup:
			if kind == WorkbookUnknown {
				kind = WorkbookHotcakeBills
			}
		}
	}
	return kind
}
