// backend/src/security/validation/content_scanner.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// ErrValidationFailed is the generic sentinel for rejected form fields.
var ErrValidationFailed = fmt.Errorf("validation failed")

// Formula injection characters at the start of a cell. Excel treats a
// leading tab or carriage return as a trigger too.
var formulaInjectionPrefixRegex = regexp.MustCompile(`^[=+\-@\t\r]`)

// IsFormulaInjection reports whether a cell value would be interpreted
// as a formula when written back into a workbook.
func IsFormulaInjection(cell string) bool {
	return formulaInjectionPrefixRegex.MatchString(cell)
}

// NeutralizeFormulaCell defangs a cell destined for a generated
// workbook by prefixing a single quote, the spreadsheet convention for
// forcing text. Values straight from uploaded exports flow into the
// report, so every text cell passes through here.
func NeutralizeFormulaCell(cell string) string {
	if IsFormulaInjection(cell) {
		return "'" + cell
	}
	return cell
}

const maxStoreNameLength = 100

// ValidateStoreName bounds the store form field: non-empty after
// trimming and short enough to be a real store name.
func ValidateStoreName(store string) error {
	trimmed := strings.TrimSpace(store)
	if trimmed == "" || len(trimmed) > maxStoreNameLength {
		return ErrValidationFailed
	}
	return nil
}
