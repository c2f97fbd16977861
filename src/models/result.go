// backend/src/models/result.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the headline reconciliation verdict for one run.
// PosCash and Discrepancy stay absent (not zero) when no POS export was
// supplied; Discrepancy is HotcakeCash minus PosCash.
type Summary struct {
	Store             string              `json:"store"`
	Period            Period              `json:"period"`
	ServiceCash       decimal.Decimal     `json:"serviceCash"`
	TopupCash         decimal.Decimal     `json:"topupCash"`
	HotcakeCash       decimal.Decimal     `json:"hotcakeCash"`
	PosCash           decimal.NullDecimal `json:"posCash"`
	Discrepancy       decimal.NullDecimal `json:"discrepancy"`
	Tolerance         decimal.Decimal     `json:"tolerance"`
	MissingBillCount  int                 `json:"missingBillCount"`
	SkippedRowCount   int                 `json:"skippedRowCount"`
	ConsideredCorrect bool                `json:"consideredCorrect"`
}

// MissingBillEntry is a checked-in booking with no corresponding
// non-empty bill (漏結帳).
type MissingBillEntry struct {
	Store       string     `json:"store"`
	Date        time.Time  `json:"date"`
	Master      string     `json:"master"`
	OrderID     string     `json:"orderId"`
	OrderTime   time.Time  `json:"orderTime"`
	CheckinTime *time.Time `json:"checkinTime,omitempty"`
	Member      string     `json:"member,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	RawStatus   string     `json:"rawStatus,omitempty"`
}

// ReconciliationResult is the full output of one reconciliation run.
// All slices are sorted deterministically before the result is built,
// so identical inputs serialize to identical bytes. The four projection
// methods correspond one-to-one to the renderer's output sheets.
type ReconciliationResult struct {
	Summary         Summary            `json:"summary"`
	MissingBillRows []MissingBillEntry `json:"missingBills"`
	ServiceBillRows []BillRecord       `json:"serviceBills"`
	TopupRows       []TopupRecord      `json:"topups"`
	SkippedRows     []SkippedRow       `json:"skippedRows,omitempty"`
}

// MissingBills is ordered by store, date, master, order id.
func (r *ReconciliationResult) MissingBills() []MissingBillEntry { return r.MissingBillRows }

// ServiceBills is ordered by order datetime.
func (r *ReconciliationResult) ServiceBills() []BillRecord { return r.ServiceBillRows }

// Topups is ordered by checkout operation datetime.
func (r *ReconciliationResult) Topups() []TopupRecord { return r.TopupRows }

// Skipped lists every row discarded during extraction and filtering.
func (r *ReconciliationResult) Skipped() []SkippedRow { return r.SkippedRows }
