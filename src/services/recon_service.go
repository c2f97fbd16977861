// backend/src/services/recon_service.go
package services

import (
	"fmt"
	"time"

	"github.com/username/cashrecon/backend/src/logger"
	"github.com/username/cashrecon/backend/src/models"
	"github.com/username/cashrecon/backend/src/parsers"
	"github.com/username/cashrecon/backend/src/processors"
)

type reconServiceImpl struct {
	processor *processors.ReconProcessor
}

// NewReconService wires the reconciliation engine behind the service
// interface. The service holds no per-run state: every Reconcile call
// works exclusively on its own arguments and result.
func NewReconService(processor *processors.ReconProcessor) ReconService {
	return &reconServiceImpl{processor: processor}
}

func (s *reconServiceImpl) Reconcile(store string, start, end time.Time, billTables, orderTables, posTables []models.Table) (*models.ReconciliationResult, error) {
	if start.After(end) {
		return nil, ErrInvalidPeriod
	}
	if len(billTables) == 0 {
		return nil, ErrNoBillTables
	}
	if len(orderTables) == 0 {
		return nil, ErrNoOrderTables
	}

	in := processors.ReconInput{
		Store:  store,
		Period: models.Period{Start: start, End: end},
		HasPos: posTables != nil,
	}

	for _, t := range billTables {
		det, err := parsers.DetectShape(t)
		if err != nil {
			return nil, err
		}
		switch det.Shape {
		case parsers.ShapeServiceBill:
			bills, skipped := parsers.ExtractBills(t, det, models.BillSourceService)
			in.Bills = append(in.Bills, bills...)
			in.Skipped = append(in.Skipped, skipped...)
		case parsers.ShapeTopup:
			topups, skipped := parsers.ExtractTopups(t, det)
			in.Topups = append(in.Topups, topups...)
			in.Skipped = append(in.Skipped, skipped...)
		default:
			return nil, fmt.Errorf("%w: sheet %q detected as %s, expected a bill ledger", ErrShapeMismatch, t.Sheet, det.Shape)
		}
	}

	for _, t := range orderTables {
		det, err := parsers.DetectShape(t)
		if err != nil {
			return nil, err
		}
		if det.Shape != parsers.ShapeOrder {
			return nil, fmt.Errorf("%w: sheet %q detected as %s, expected the order report", ErrShapeMismatch, t.Sheet, det.Shape)
		}
		orders, skipped := parsers.ExtractOrders(t, det)
		in.Orders = append(in.Orders, orders...)
		in.Skipped = append(in.Skipped, skipped...)
	}

	for _, t := range posTables {
		det, err := parsers.DetectShape(t)
		if err != nil {
			return nil, err
		}
		if det.Shape != parsers.ShapePos {
			return nil, fmt.Errorf("%w: sheet %q detected as %s, expected the register export", ErrShapeMismatch, t.Sheet, det.Shape)
		}
		txns, skipped := parsers.ExtractPosTransactions(t, det)
		in.Pos = append(in.Pos, txns...)
		in.Skipped = append(in.Skipped, skipped...)
	}

	logger.L.Info("Running reconciliation",
		"store", store,
		"bills", len(in.Bills),
		"orders", len(in.Orders),
		"topups", len(in.Topups),
		"pos", len(in.Pos),
		"hasPos", in.HasPos,
		"skippedAtExtraction", len(in.Skipped))

	return s.processor.Process(in)
}
