// backend/src/processors/window.go
package processors

import (
	"github.com/username/cashrecon/backend/src/models"
)

// Window filtering keeps records whose designated timestamp falls inside
// the closed period. A record carrying no resolvable timestamp is
// excluded and reported as a NO_TIMESTAMP skip, never dropped silently.

// FilterBills windows service bills by order datetime.
func FilterBills(bills []models.BillRecord, p models.Period) ([]models.BillRecord, []models.SkippedRow) {
	var in []models.BillRecord
	var skipped []models.SkippedRow
	for _, b := range bills {
		if b.OrderTime.IsZero() {
			skipped = append(skipped, models.SkippedRow{Sheet: string(b.Source), Reason: models.SkipNoTimestamp, Detail: "bill " + b.BillID})
			continue
		}
		if p.Contains(b.OrderTime) {
			in = append(in, b)
		}
	}
	return in, skipped
}

// FilterOrders windows bookings by order datetime.
func FilterOrders(orders []models.OrderRecord, p models.Period) ([]models.OrderRecord, []models.SkippedRow) {
	var in []models.OrderRecord
	var skipped []models.SkippedRow
	for _, o := range orders {
		if o.OrderTime.IsZero() {
			skipped = append(skipped, models.SkippedRow{Sheet: "orders", Reason: models.SkipNoTimestamp, Detail: "order " + o.OrderID})
			continue
		}
		if p.Contains(o.OrderTime) {
			in = append(in, o)
		}
	}
	return in, skipped
}

// FilterTopups windows top-ups by checkout operation time, which is the
// designated timestamp for stored-value rows.
func FilterTopups(topups []models.TopupRecord, p models.Period) ([]models.TopupRecord, []models.SkippedRow) {
	var in []models.TopupRecord
	var skipped []models.SkippedRow
	for _, t := range topups {
		if t.SettleTime.IsZero() {
			skipped = append(skipped, models.SkippedRow{Sheet: "topup", Reason: models.SkipNoTimestamp, Detail: "bill " + t.BillID})
			continue
		}
		if p.Contains(t.SettleTime) {
			in = append(in, t)
		}
	}
	return in, skipped
}

// FilterPos windows register rows at date-only granularity, since the
// POS export reports days, not times.
func FilterPos(txns []models.PosTransaction, p models.Period) ([]models.PosTransaction, []models.SkippedRow) {
	var in []models.PosTransaction
	var skipped []models.SkippedRow
	for _, t := range txns {
		if t.Date.IsZero() {
			skipped = append(skipped, models.SkippedRow{Sheet: "pos", Reason: models.SkipNoTimestamp, Detail: "txn " + t.TxnID})
			continue
		}
		if p.ContainsDate(t.Date) {
			in = append(in, t)
		}
	}
	return in, skipped
}
