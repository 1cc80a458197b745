// =============================================================================
// Presumed Calculation - Template Validation
// =============================================================================
//
// This module checks that a master template has the layout the merge
// expects before it is cached or used for a run:
//   - The workbook has a first worksheet
//   - The worksheet has at least one data row below the header
//   - Every data row carries a CNPJ (column A) known to the registration table
//   - Every data row carries a numeric CFOP (column D)
//
// ERROR HANDLING:
//   - Problems are collected, not returned one at a time
//   - Each problem carries the 1-based row and column letter
//   - A missing worksheet or an empty sheet is fatal ("error"); row-level
//     problems are warnings, since the merge leaves such rows untouched
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/presumed-calculation/internal/branch"
	"github.com/ginjaninja78/presumed-calculation/internal/sheet"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single template problem.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Rule names the check that failed.
	Rule string

	// Row is the 1-based row number, or 0 for workbook-level problems.
	Row int

	// Column is the column letter, or "" for row-level problems.
	Column string

	// Value is the offending cell text.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("[%s] %s", strings.ToUpper(e.Severity), e.Message)
	}
	return fmt.Sprintf("[%s] Row %d, Column %s: %s (value: '%s')",
		strings.ToUpper(e.Severity), e.Row, e.Column, e.Message, e.Value)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all problems, warnings included.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// RowsValidated is the number of data rows inspected.
	RowsValidated int
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
}

// Err returns the first fatal problem, or nil.
func (r *ValidationResult) Err() error {
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			return e
		}
	}
	return nil
}

// =============================================================================
// VALIDATORS
// =============================================================================

// ValidateTemplate checks the first worksheet of wb.
func ValidateTemplate(wb *sheet.Workbook) *ValidationResult {
	if wb.SheetCount() == 0 {
		result := &ValidationResult{IsValid: true}
		result.add(&ValidationError{
			Severity: SeverityError,
			Rule:     "worksheet",
			Message:  "workbook has no worksheet",
		})
		return result
	}

	ws, err := wb.Sheet(0)
	if err != nil {
		result := &ValidationResult{IsValid: true}
		result.add(&ValidationError{Severity: SeverityError, Rule: "worksheet", Message: err.Error()})
		return result
	}
	return ValidateSheet(ws)
}

// ValidateSheet checks the data rows of a master sheet.
func ValidateSheet(r sheet.Reader) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	last := r.MaxDataRow()
	if last < sheet.FirstDataRow {
		result.add(&ValidationError{
			Severity: SeverityError,
			Rule:     "data_rows",
			Message:  "master sheet has no data rows below the header",
		})
		return result
	}

	// Unknown CNPJs are reported once per group, not once per row.
	var group string
	for row := sheet.FirstDataRow; row <= last; row++ {
		result.RowsValidated++

		id := strings.TrimSpace(r.String(row, sheet.ColRegistrationID))
		switch {
		case id == "":
			result.add(rowWarning("registration_id", row, sheet.ColRegistrationID, "",
				"CNPJ is blank; row is skipped by the merge"))
		case id != group:
			group = id
			if branch.Resolve(id) == branch.None {
				result.add(rowWarning("registration_id", row, sheet.ColRegistrationID, id,
					"CNPJ is not in the registration table; group is left untouched"))
			}
		}

		if _, ok := r.Numeric(row, sheet.ColOperationCode); !ok {
			result.add(rowWarning("operation_code", row, sheet.ColOperationCode,
				r.String(row, sheet.ColOperationCode), "CFOP is not numeric; row cannot match"))
		}
	}

	return result
}

func rowWarning(rule string, row, col int, value, message string) *ValidationError {
	letter, _ := excelize.ColumnNumberToName(col + 1)
	return &ValidationError{
		Severity: SeverityWarning,
		Rule:     rule,
		Row:      row + 1,
		Column:   letter,
		Value:    value,
		Message:  message,
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation problems for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d problem(s):\n\n", len(errors)))
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}
