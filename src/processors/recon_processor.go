// backend/src/processors/recon_processor.go
package processors

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/cashrecon/backend/src/logger"
	"github.com/username/cashrecon/backend/src/models"
)

// DefaultCashTolerance is the fixed currency tolerance for the POS
// comparison: one currency unit, the usual rounding slack of a cash
// drawer. The comparison is range-aggregated, one total per run.
var DefaultCashTolerance = decimal.RequireFromString("1.00")

// ReconInput carries the extracted, typed records of one run plus the
// diagnostics accumulated upstream. HasPos distinguishes "no register
// export supplied" from "register export with zero rows".
type ReconInput struct {
	Store   string
	Period  models.Period
	Bills   []models.BillRecord
	Orders  []models.OrderRecord
	Topups  []models.TopupRecord
	Pos     []models.PosTransaction
	HasPos  bool
	Skipped []models.SkippedRow
}

// ReconProcessor is the reconciliation engine: store scoping, the
// order-to-bill join, missing-bill classification, cash aggregation and
// the POS discrepancy verdict. It is a pure computation; the input is
// only read and the result is freshly built.
type ReconProcessor struct {
	tolerance decimal.Decimal
}

func NewReconProcessor(tolerance decimal.Decimal) *ReconProcessor {
	return &ReconProcessor{tolerance: tolerance}
}

func normalizeStore(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Process runs the engine. Fatal outcomes are AmbiguousStoreError (the
// requested store matches no store present in the input) and
// EmptyInputError (nothing left to reconcile after filtering).
func (p *ReconProcessor) Process(in ReconInput) (*models.ReconciliationResult, error) {
	storeKey := normalizeStore(in.Store)
	skipped := append([]models.SkippedRow(nil), in.Skipped...)

	available := map[string]string{}
	for _, b := range in.Bills {
		available[normalizeStore(b.Store)] = strings.TrimSpace(b.Store)
	}
	for _, o := range in.Orders {
		available[normalizeStore(o.Store)] = strings.TrimSpace(o.Store)
	}
	for _, t := range in.Topups {
		available[normalizeStore(t.Store)] = strings.TrimSpace(t.Store)
	}
	if _, ok := available[storeKey]; !ok {
		names := make([]string, 0, len(available))
		for _, name := range available {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, &models.AmbiguousStoreError{Requested: strings.TrimSpace(in.Store), Available: names}
	}

	// Store scoping. The join below uses all of the store's bills, not
	// just the windowed ones: a booking billed after the window end is
	// still billed, not missing.
	var storeBills []models.BillRecord
	for _, b := range in.Bills {
		if normalizeStore(b.Store) == storeKey {
			storeBills = append(storeBills, b)
		}
	}
	var storeOrders []models.OrderRecord
	for _, o := range in.Orders {
		if normalizeStore(o.Store) == storeKey {
			storeOrders = append(storeOrders, o)
		}
	}
	var storeTopups []models.TopupRecord
	for _, t := range in.Topups {
		if normalizeStore(t.Store) == storeKey {
			storeTopups = append(storeTopups, t)
		}
	}

	windowBills, sk := FilterBills(storeBills, in.Period)
	skipped = append(skipped, sk...)
	windowOrders, sk := FilterOrders(storeOrders, in.Period)
	skipped = append(skipped, sk...)
	windowTopups, sk := FilterTopups(storeTopups, in.Period)
	skipped = append(skipped, sk...)

	if len(windowBills)+len(windowOrders) == 0 {
		return nil, &models.EmptyInputError{Store: strings.TrimSpace(in.Store), Period: in.Period}
	}

	billsByOrder := make(map[string][]models.BillRecord)
	for _, b := range storeBills {
		if b.OrderID != "" {
			billsByOrder[b.OrderID] = append(billsByOrder[b.OrderID], b)
		}
	}

	missing := classifyMissing(windowOrders, billsByOrder)

	serviceCash := decimal.Zero
	for _, b := range windowBills {
		if b.Amount.Valid {
			serviceCash = serviceCash.Add(b.Amount.Decimal)
		}
	}
	topupCash := decimal.Zero
	for _, t := range windowTopups {
		topupCash = topupCash.Add(t.Amount)
	}
	hotcakeCash := serviceCash.Add(topupCash)

	var posCash, discrepancy decimal.NullDecimal
	if in.HasPos {
		posRows := scopePos(in.Pos, storeKey)
		windowPos, sk := FilterPos(posRows, in.Period)
		skipped = append(skipped, sk...)
		total := decimal.Zero
		for _, t := range windowPos {
			total = total.Add(t.Cash)
		}
		posCash = decimal.NullDecimal{Decimal: total, Valid: true}
		discrepancy = decimal.NullDecimal{Decimal: hotcakeCash.Sub(total), Valid: true}
	}

	correct := true
	if in.HasPos {
		correct = discrepancy.Decimal.Abs().LessThanOrEqual(p.tolerance) && len(missing) == 0
	}

	sortMissing(missing)
	sortServiceBills(windowBills)
	sortTopups(windowTopups)

	if len(skipped) > 0 {
		logger.L.Warn("Reconciliation discarded input rows",
			"store", in.Store, "skippedRows", len(skipped))
	}

	return &models.ReconciliationResult{
		Summary: models.Summary{
			Store:             strings.TrimSpace(in.Store),
			Period:            in.Period,
			ServiceCash:       serviceCash,
			TopupCash:         topupCash,
			HotcakeCash:       hotcakeCash,
			PosCash:           posCash,
			Discrepancy:       discrepancy,
			Tolerance:         p.tolerance,
			MissingBillCount:  len(missing),
			SkippedRowCount:   len(skipped),
			ConsideredCorrect: correct,
		},
		MissingBillRows: missing,
		ServiceBillRows: windowBills,
		TopupRows:       windowTopups,
		SkippedRows:     skipped,
	}, nil
}

// classifyMissing flags arrived bookings whose order id joins to no
// bill, or only to bills with absent amounts. Several bills on one
// order are partial payments and sum; a duplicate order id is checked
// once. Cancelled and unrecognized statuses are never expected to bill.
func classifyMissing(orders []models.OrderRecord, billsByOrder map[string][]models.BillRecord) []models.MissingBillEntry {
	var missing []models.MissingBillEntry
	seen := make(map[string]bool)
	for _, o := range orders {
		if o.Status != models.OrderStatusArrived || seen[o.OrderID] {
			continue
		}
		seen[o.OrderID] = true
		if _, ok := mergedBillAmount(billsByOrder[o.OrderID]); ok {
			continue
		}
		missing = append(missing, models.MissingBillEntry{
			Store:       o.Store,
			Date:        truncateDate(o.OrderTime),
			Master:      o.Master,
			OrderID:     o.OrderID,
			OrderTime:   o.OrderTime,
			CheckinTime: o.CheckinTime,
			Member:      o.Member,
			Phone:       o.Phone,
			RawStatus:   o.RawStatus,
		})
	}
	return missing
}

// mergedBillAmount resolves duplicate bills on one order id: rows with
// absent amounts lose to rows with amounts, and several amounts sum.
// ok is false when no bill carries an amount at all.
func mergedBillAmount(bills []models.BillRecord) (decimal.Decimal, bool) {
	total := decimal.Zero
	found := false
	for _, b := range bills {
		if b.Amount.Valid {
			total = total.Add(b.Amount.Decimal)
			found = true
		}
	}
	return total, found
}

// scopePos restricts register rows to the target store only when the
// store actually appears among the POS terminal names; a register
// export is usually per store and its terminal naming need not match
// Hotcake's store naming.
func scopePos(txns []models.PosTransaction, storeKey string) []models.PosTransaction {
	match := false
	for _, t := range txns {
		if normalizeStore(t.Store) == storeKey {
			match = true
			break
		}
	}
	if !match {
		return txns
	}
	var scoped []models.PosTransaction
	for _, t := range txns {
		if normalizeStore(t.Store) == storeKey {
			scoped = append(scoped, t)
		}
	}
	return scoped
}

func truncateDate(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

func sortMissing(entries []models.MissingBillEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Store != b.Store {
			return a.Store < b.Store
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Master != b.Master {
			return a.Master < b.Master
		}
		return a.OrderID < b.OrderID
	})
}

func sortServiceBills(bills []models.BillRecord) {
	sort.SliceStable(bills, func(i, j int) bool {
		a, b := bills[i], bills[j]
		if !a.OrderTime.Equal(b.OrderTime) {
			return a.OrderTime.Before(b.OrderTime)
		}
		if a.BillID != b.BillID {
			return a.BillID < b.BillID
		}
		return a.OrderID < b.OrderID
	})
}

func sortTopups(topups []models.TopupRecord) {
	sort.SliceStable(topups, func(i, j int) bool {
		a, b := topups[i], topups[j]
		if !a.SettleTime.Equal(b.SettleTime) {
			return a.SettleTime.Before(b.SettleTime)
		}
		return a.BillID < b.BillID
	})
}
