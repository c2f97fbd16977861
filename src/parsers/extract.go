// backend/src/parsers/extract.go
package parsers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/cashrecon/backend/src/models"
)

// Extraction is best-effort over a whole sheet: a bad row becomes a
// SkippedRow with a reason, never a fatal error. Row numbers in
// SkippedRow are 1-based spreadsheet rows.

var datetimeFormats = []string{
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var dateFormats = []string{
	"2006/01/02",
	"2006-01-02",
}

// ParseDateTime accepts the datetime spellings seen across Hotcake and
// POS exports. Bare dates parse to midnight.
func ParseDateTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	for _, layout := range datetimeFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable datetime %q", raw)
}

var amountReplacer = strings.NewReplacer(
	",", "",
	"元", "",
	"NT$", "",
	"$", "",
	" ", "",
	"　", "",
)

// ParseAmount parses a currency cell into a fixed-point decimal.
// Summation never touches floats, so 10.10 three times is exactly 30.30.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := amountReplacer.Replace(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(s)
}

// parseNullAmount keeps a blank cell as absent; only a non-blank,
// unparseable cell is an error.
func parseNullAmount(raw string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := ParseAmount(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cell fetches an optional field's cell, "" when the column is absent.
func cell(t models.Table, row int, fields map[string]int, field string) string {
	col, ok := fields[field]
	if !ok {
		return ""
	}
	return strings.TrimSpace(t.Cell(row, col))
}

// ExtractBills turns a service-bill sheet into BillRecords. The bill
// amount is the cash column when present, otherwise the settle amount.
// A row with neither an order reference nor an amount is not a valid
// bill and is discarded as MISSING_KEY.
func ExtractBills(t models.Table, det Detection, source models.BillSource) ([]models.BillRecord, []models.SkippedRow) {
	var bills []models.BillRecord
	var skipped []models.SkippedRow

	for i := det.HeaderRow + 1; i < len(t.Rows); i++ {
		rowNo := i + 1
		if isBlankRow(t.Rows[i]) {
			continue
		}
		billID := cell(t, i, det.Fields, FieldBillID)
		if billID == "" {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipMissingKey, Detail: "bill id"})
			continue
		}
		orderTime, err := ParseDateTime(cell(t, i, det.Fields, FieldOrderTime))
		if err != nil {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipUnparseableDate, Detail: "order time"})
			continue
		}

		amountRaw := cell(t, i, det.Fields, FieldCash)
		if amountRaw == "" {
			amountRaw = cell(t, i, det.Fields, FieldAmount)
		}
		amount, err := parseNullAmount(amountRaw)
		if err != nil {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipUnparseableAmount, Detail: amountRaw})
			continue
		}

		orderID := cell(t, i, det.Fields, FieldOrderID)
		if orderID == "" && !amount.Valid {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipMissingKey, Detail: "no order id and no amount"})
			continue
		}

		var settleTime time.Time
		if raw := cell(t, i, det.Fields, FieldSettleTime); raw != "" {
			if ts, err := ParseDateTime(raw); err == nil {
				settleTime = ts
			}
		}

		bills = append(bills, models.BillRecord{
			Store:      cell(t, i, det.Fields, FieldStore),
			BillID:     billID,
			OrderID:    orderID,
			Master:     cell(t, i, det.Fields, FieldMaster),
			Item:       cell(t, i, det.Fields, FieldItem),
			Amount:     amount,
			OrderTime:  orderTime,
			SettleTime: settleTime,
			Source:     source,
		})
	}
	return bills, skipped
}

// ExtractOrders turns an order-report sheet into OrderRecords.
func ExtractOrders(t models.Table, det Detection) ([]models.OrderRecord, []models.SkippedRow) {
	var orders []models.OrderRecord
	var skipped []models.SkippedRow

	for i := det.HeaderRow + 1; i < len(t.Rows); i++ {
		rowNo := i + 1
		if isBlankRow(t.Rows[i]) {
			continue
		}
		orderID := cell(t, i, det.Fields, FieldOrderID)
		if orderID == "" {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipMissingKey, Detail: "order id"})
			continue
		}
		orderTime, err := ParseDateTime(cell(t, i, det.Fields, FieldOrderTime))
		if err != nil {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipUnparseableDate, Detail: "order time"})
			continue
		}

		var checkin *time.Time
		if raw := cell(t, i, det.Fields, FieldCheckinTime); raw != "" {
			if ts, err := ParseDateTime(raw); err == nil {
				checkin = &ts
			}
		}

		rawStatus := cell(t, i, det.Fields, FieldStatus)
		orders = append(orders, models.OrderRecord{
			Store:       cell(t, i, det.Fields, FieldStore),
			OrderID:     orderID,
			Master:      cell(t, i, det.Fields, FieldMaster),
			Item:        cell(t, i, det.Fields, FieldItem),
			Member:      cell(t, i, det.Fields, FieldMember),
			Phone:       cell(t, i, det.Fields, FieldPhone),
			OrderTime:   orderTime,
			CheckinTime: checkin,
			Status:      models.ParseOrderStatus(rawStatus),
			RawStatus:   rawStatus,
		})
	}
	return orders, skipped
}

// ExtractTopups turns a stored-value sheet into TopupRecords. The
// settle (checkout operation) time is the business key timestamp here.
func ExtractTopups(t models.Table, det Detection) ([]models.TopupRecord, []models.SkippedRow) {
	var topups []models.TopupRecord
	var skipped []models.SkippedRow

	for i := det.HeaderRow + 1; i < len(t.Rows); i++ {
		rowNo := i + 1
		if isBlankRow(t.Rows[i]) {
			continue
		}
		billID := cell(t, i, det.Fields, FieldBillID)
		if billID == "" {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipMissingKey, Detail: "bill id"})
			continue
		}
		settleTime, err := ParseDateTime(cell(t, i, det.Fields, FieldSettleTime))
		if err != nil {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipUnparseableDate, Detail: "settle time"})
			continue
		}

		amountRaw := cell(t, i, det.Fields, FieldCash)
		if amountRaw == "" {
			amountRaw = cell(t, i, det.Fields, FieldAmount)
		}
		if amountRaw == "" {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipMissingKey, Detail: "amount"})
			continue
		}
		amount, err := ParseAmount(amountRaw)
		if err != nil {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipUnparseableAmount, Detail: amountRaw})
			continue
		}

		topups = append(topups, models.TopupRecord{
			Store:      cell(t, i, det.Fields, FieldStore),
			BillID:     billID,
			OrderID:    cell(t, i, det.Fields, FieldOrderID),
			Master:     cell(t, i, det.Fields, FieldMaster),
			Item:       cell(t, i, det.Fields, FieldItem),
			Amount:     amount,
			SettleTime: settleTime,
		})
	}
	return topups, skipped
}

// ExtractPosTransactions turns a cashier-register export into
// PosTransactions. The register reports the terminal name where Hotcake
// reports a store; both land in Store.
func ExtractPosTransactions(t models.Table, det Detection) ([]models.PosTransaction, []models.SkippedRow) {
	var txns []models.PosTransaction
	var skipped []models.SkippedRow

	for i := det.HeaderRow + 1; i < len(t.Rows); i++ {
		rowNo := i + 1
		if isBlankRow(t.Rows[i]) {
			continue
		}
		createdRaw := cell(t, i, det.Fields, FieldCreatedTime)
		created, err := ParseDateTime(createdRaw)
		if err != nil {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipUnparseableDate, Detail: "created time"})
			continue
		}
		cashRaw := cell(t, i, det.Fields, FieldCash)
		cash, err := ParseAmount(cashRaw)
		if err != nil {
			skipped = append(skipped, models.SkippedRow{Sheet: t.Sheet, Row: rowNo, Reason: models.SkipUnparseableAmount, Detail: cashRaw})
			continue
		}

		txns = append(txns, models.PosTransaction{
			Store:     cell(t, i, det.Fields, FieldTerminal),
			TxnID:     cell(t, i, det.Fields, FieldOrderID),
			Product:   cell(t, i, det.Fields, FieldProduct),
			Date:      created,
			Cash:      cash,
			PayMethod: cell(t, i, det.Fields, FieldPayMethod),
			PayStatus: cell(t, i, det.Fields, FieldPayStatus),
		})
	}
	return txns, skipped
}
