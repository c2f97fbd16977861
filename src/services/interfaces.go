// backend/src/services/interfaces.go
package services

import (
	"errors"
	"time"

	"github.com/username/cashrecon/backend/src/models"
)

// Common service errors.
var (
	ErrInvalidPeriod = errors.New("period start must not be after period end")
	ErrNoBillTables  = errors.New("no hotcake bill tables supplied")
	ErrNoOrderTables = errors.New("no hotcake order tables supplied")
	ErrShapeMismatch = errors.New("table shape does not match its role")
)

// ReconService is the invocation contract consumed by the CLI and the
// web handler. Inputs are already-parsed tables; the service never
// opens files and keeps no state between calls. posTables may be nil,
// meaning no register export was supplied.
type ReconService interface {
	Reconcile(store string, start, end time.Time, billTables, orderTables, posTables []models.Table) (*models.ReconciliationResult, error)
}
