// cashrecon generates a cash reconciliation report from Hotcake exports
// and an optional cashier-register export.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/username/cashrecon/backend/src/logger"
	"github.com/username/cashrecon/backend/src/models"
	"github.com/username/cashrecon/backend/src/parsers"
	"github.com/username/cashrecon/backend/src/processors"
	"github.com/username/cashrecon/backend/src/reports"
	"github.com/username/cashrecon/backend/src/services"
)

var cliTimeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseCLITime(raw string) (time.Time, error) {
	for _, layout := range cliTimeFormats {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("expected YYYY-MM-DD HH:MM[:SS], got %q", raw)
}

func fatalf(kind, format string, args ...any) {
	fmt.Fprintf(os.Stderr, kind+": "+format+"\n", args...)
	os.Exit(1)
}

func errorKind(err error) string {
	var schemaErr *models.UnrecognizedSchemaError
	var emptyErr *models.EmptyInputError
	var storeErr *models.AmbiguousStoreError
	switch {
	case errors.As(err, &schemaErr):
		return "UnrecognizedSchema"
	case errors.As(err, &emptyErr):
		return "EmptyInputError"
	case errors.As(err, &storeErr):
		return "AmbiguousStoreError"
	default:
		return "Error"
	}
}

func main() {
	store := flag.String("store", "", "store name, must match the exports")
	startStr := flag.String("start", "", "range start, YYYY-MM-DD HH:MM[:SS]")
	endStr := flag.String("end", "", "range end, YYYY-MM-DD HH:MM[:SS]")
	billsPath := flag.String("hotcake-bills", "", "path to the Hotcake bill ledger xlsx")
	ordersPath := flag.String("hotcake-orders", "", "path to the Hotcake order report xlsx")
	posPath := flag.String("pos-orders", "", "path to the register history xlsx (optional)")
	outPath := flag.String("out", "cash_recon.xlsx", "output report path")
	flag.Parse()

	logger.InitLogger("warn")

	if *store == "" || *startStr == "" || *endStr == "" || *billsPath == "" || *ordersPath == "" {
		fmt.Fprintln(os.Stderr, "usage: cashrecon --store S --start T --end T --hotcake-bills F --hotcake-orders F [--pos-orders F] [--out F]")
		os.Exit(2)
	}

	start, err := parseCLITime(*startStr)
	if err != nil {
		fatalf("Error", "invalid --start: %v", err)
	}
	end, err := parseCLITime(*endStr)
	if err != nil {
		fatalf("Error", "invalid --end: %v", err)
	}

	billTables, err := parsers.LoadWorkbookFile(*billsPath)
	if err != nil {
		fatalf("Error", "%v", err)
	}
	orderTables, err := parsers.LoadWorkbookFile(*ordersPath)
	if err != nil {
		fatalf("Error", "%v", err)
	}
	var posTables []models.Table
	if *posPath != "" {
		posTables, err = parsers.LoadWorkbookFile(*posPath)
		if err != nil {
			fatalf("Error", "%v", err)
		}
	}

	svc := services.NewReconService(processors.NewReconProcessor(processors.DefaultCashTolerance))
	result, err := svc.Reconcile(*store, start, end, billTables, orderTables, posTables)
	if err != nil {
		fatalf(errorKind(err), "%v", err)
	}

	if err := reports.SaveWorkbook(result, *outPath); err != nil {
		fatalf("Error", "%v", err)
	}

	fmt.Println(*outPath)
	if result.Summary.MissingBillCount > 0 {
		fmt.Fprintf(os.Stderr, "WARNING: %d missing bills in range\n", result.Summary.MissingBillCount)
	}
	if !result.Summary.ConsideredCorrect {
		fmt.Fprintln(os.Stderr, "WARNING: reconciliation not considered correct")
	}
}
