// backend/src/reports/workbook.go
package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/cashrecon/backend/src/models"
	"github.com/username/cashrecon/backend/src/security/validation"
	"github.com/xuri/excelize/v2"
)

// The renderer consumes the engine's ordered projections one sheet
// each: Summary, MissingBills, HotcakeBills_Service, HotcakeBills_Topup.

const (
	sheetSummary      = "Summary"
	sheetMissingBills = "MissingBills"
	sheetServiceBills = "HotcakeBills_Service"
	sheetTopups       = "HotcakeBills_Topup"
)

func fmtDT(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("2006-01-02 15:04:05")
}

func fmtD(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("2006-01-02")
}

func fmtPtrDT(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return fmtDT(*ts)
}

// BuildWorkbook renders a reconciliation result into an in-memory
// workbook. Text cells coming from uploaded exports are neutralized
// against formula injection before they land in the file.
func BuildWorkbook(result *models.ReconciliationResult) (*excelize.File, error) {
	f := excelize.NewFile()

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, result, moneyStyle, headerStyle); err != nil {
		return nil, err
	}
	if err := writeMissingBills(f, result, headerStyle); err != nil {
		return nil, err
	}
	if err := writeBillSheet(f, sheetServiceBills, billRows(result.ServiceBills()), moneyStyle, headerStyle); err != nil {
		return nil, err
	}
	if err := writeBillSheet(f, sheetTopups, topupRows(result.Topups()), moneyStyle, headerStyle); err != nil {
		return nil, err
	}

	// The default sheet was renamed to Summary; make it the active one.
	idx, err := f.GetSheetIndex(sheetSummary)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

// SaveWorkbook renders and writes the report to disk; CLI path.
func SaveWorkbook(result *models.ReconciliationResult, path string) error {
	f, err := BuildWorkbook(result)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return nil
}

// StreamWorkbook renders and streams the report as an attachment; HTTP path.
func StreamWorkbook(w http.ResponseWriter, result *models.ReconciliationResult, filename string) error {
	f, err := BuildWorkbook(result)
	if err != nil {
		return err
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return f.Write(w)
}

func writeSummary(f *excelize.File, result *models.ReconciliationResult, moneyStyle, headerStyle int) error {
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	s := result.Summary

	labelRows := []struct {
		label string
		value interface{}
		money bool
	}{
		{"分店", validation.NeutralizeFormulaCell(s.Store), false},
		{"區間開始", fmtDT(s.Period.Start), false},
		{"區間結束", fmtDT(s.Period.End), false},
		{"漏結帳筆數", s.MissingBillCount, false},
		{"Hotcake 服務現金", s.ServiceCash.InexactFloat64(), true},
		{"Hotcake 儲值金現金", s.TopupCash.InexactFloat64(), true},
		{"Hotcake 現金合計", s.HotcakeCash.InexactFloat64(), true},
		{"收銀機現金合計", nullMoney(s.PosCash), s.PosCash.Valid},
		{"差額 (Hotcake - 收銀機)", nullMoney(s.Discrepancy), s.Discrepancy.Valid},
		{"容忍差額", s.Tolerance.InexactFloat64(), true},
		{"略過列數", s.SkippedRowCount, false},
		{"是否可視為正確現金對帳", verdict(s.ConsideredCorrect), false},
	}

	for i, row := range labelRows {
		labelCell := fmt.Sprintf("A%d", i+1)
		valueCell := fmt.Sprintf("B%d", i+1)
		if err := f.SetCellValue(sheetSummary, labelCell, row.label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetSummary, labelCell, labelCell, headerStyle); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetSummary, valueCell, row.value); err != nil {
			return err
		}
		if row.money {
			if err := f.SetCellStyle(sheetSummary, valueCell, valueCell, moneyStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

func nullMoney(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return ""
	}
	return d.Decimal.InexactFloat64()
}

func verdict(correct bool) string {
	if correct {
		return "是"
	}
	return "否"
}

func writeMissingBills(f *excelize.File, result *models.ReconciliationResult, headerStyle int) error {
	if _, err := f.NewSheet(sheetMissingBills); err != nil {
		return err
	}
	headers := []string{"分店", "日期", "設計師", "訂單編號", "日期時間", "報到/取消時間", "訂單狀態", "會員姓名", "手機號碼"}
	if err := writeHeaderRow(f, sheetMissingBills, headers, headerStyle); err != nil {
		return err
	}
	for i, e := range result.MissingBills() {
		row := i + 2
		cells := []interface{}{
			validation.NeutralizeFormulaCell(e.Store),
			fmtD(e.Date),
			validation.NeutralizeFormulaCell(e.Master),
			validation.NeutralizeFormulaCell(e.OrderID),
			fmtDT(e.OrderTime),
			fmtPtrDT(e.CheckinTime),
			validation.NeutralizeFormulaCell(e.RawStatus),
			validation.NeutralizeFormulaCell(e.Member),
			validation.NeutralizeFormulaCell(e.Phone),
		}
		if err := setRow(f, sheetMissingBills, row, cells); err != nil {
			return err
		}
	}
	return nil
}

type reportBillRow struct {
	store, billID, orderID, master, item string
	when                                 time.Time
	amount                               interface{}
}

func billRows(bills []models.BillRecord) []reportBillRow {
	rows := make([]reportBillRow, 0, len(bills))
	for _, b := range bills {
		var amount interface{} = ""
		if b.Amount.Valid {
			amount = b.Amount.Decimal.InexactFloat64()
		}
		rows = append(rows, reportBillRow{
			store: b.Store, billID: b.BillID, orderID: b.OrderID,
			master: b.Master, item: b.Item, when: b.OrderTime, amount: amount,
		})
	}
	return rows
}

func topupRows(topups []models.TopupRecord) []reportBillRow {
	rows := make([]reportBillRow, 0, len(topups))
	for _, t := range topups {
		rows = append(rows, reportBillRow{
			store: t.Store, billID: t.BillID, orderID: t.OrderID,
			master: t.Master, item: t.Item, when: t.SettleTime, amount: t.Amount.InexactFloat64(),
		})
	}
	return rows
}

func writeBillSheet(f *excelize.File, sheet string, rows []reportBillRow, moneyStyle, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	headers := []string{"分店", "帳單編號", "訂單編號", "日期時間", "設計師", "項目", "現金"}
	if err := writeHeaderRow(f, sheet, headers, headerStyle); err != nil {
		return err
	}
	for i, r := range rows {
		row := i + 2
		cells := []interface{}{
			validation.NeutralizeFormulaCell(r.store),
			validation.NeutralizeFormulaCell(r.billID),
			validation.NeutralizeFormulaCell(r.orderID),
			fmtDT(r.when),
			validation.NeutralizeFormulaCell(r.master),
			validation.NeutralizeFormulaCell(r.item),
			r.amount,
		}
		if err := setRow(f, sheet, row, cells); err != nil {
			return err
		}
		moneyCell, err := excelize.CoordinatesToCellName(len(cells), row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, moneyCell, moneyCell, moneyStyle); err != nil {
			return err
		}
	}
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, headerStyle int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, start, &cells)
}
