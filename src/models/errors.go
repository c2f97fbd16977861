// backend/src/models/errors.go
package models

import (
	"fmt"
	"strings"
)

// SkipReason classifies why one input row was discarded. Skipped rows
// are diagnostics, never fatal; no row may vanish without one.
type SkipReason string

const (
	SkipMissingKey        SkipReason = "MISSING_KEY"
	SkipUnparseableDate   SkipReason = "UNPARSEABLE_DATE"
	SkipUnparseableAmount SkipReason = "UNPARSEABLE_AMOUNT"
	SkipNoTimestamp       SkipReason = "NO_TIMESTAMP"
	SkipEmptyRow          SkipReason = "EMPTY_ROW"
)

// SkippedRow records a single discarded input row. Row is 1-based, as a
// spreadsheet user would count it.
type SkippedRow struct {
	Sheet  string     `json:"sheet"`
	Row    int        `json:"row"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

func (s SkippedRow) String() string {
	if s.Detail == "" {
		return fmt.Sprintf("%s row %d: %s", s.Sheet, s.Row, s.Reason)
	}
	return fmt.Sprintf("%s row %d: %s (%s)", s.Sheet, s.Row, s.Reason, s.Detail)
}

// UnrecognizedSchemaError is fatal: a sheet's headers matched no known
// table shape. Missing lists the unresolved required fields of the
// closest candidate shape so the operator can fix the export.
type UnrecognizedSchemaError struct {
	Sheet   string
	Missing []string
}

func (e *UnrecognizedSchemaError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("unrecognized schema in sheet %q", e.Sheet)
	}
	return fmt.Sprintf("unrecognized schema in sheet %q: missing required columns %s",
		e.Sheet, strings.Join(e.Missing, ", "))
}

// EmptyInputError is fatal: no bill or order records survived store and
// window filtering, so there is nothing to reconcile.
type EmptyInputError struct {
	Store  string
	Period Period
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no bill or order records for store %q between %s and %s",
		e.Store, e.Period.Start.Format("2006-01-02 15:04"), e.Period.End.Format("2006-01-02 15:04"))
}

// AmbiguousStoreError is fatal: the requested store matched none of the
// distinct store names in the input. Matching is exact after trimming
// and case folding; there is no fuzzy fallback.
type AmbiguousStoreError struct {
	Requested string
	Available []string
}

func (e *AmbiguousStoreError) Error() string {
	return fmt.Sprintf("store %q not found in input; stores present: %s",
		e.Requested, strings.Join(e.Available, ", "))
}
