package validation

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/presumed-calculation/internal/sheet"
)

func newTemplate(t *testing.T) (*sheet.Workbook, *sheet.Worksheet) {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	wb := sheet.NewWorkbook(f, "")
	ws, err := wb.Sheet(0)
	if err != nil {
		t.Fatalf("Sheet(0): %v", err)
	}
	ws.SetString(0, sheet.ColRegistrationID, "CNPJ")
	ws.SetString(0, sheet.ColOperationCode, "CFOP")
	return wb, ws
}

func TestValidateTemplate_Clean(t *testing.T) {
	wb, ws := newTemplate(t)
	ws.SetString(1, sheet.ColRegistrationID, "86900925/0001-04")
	ws.SetInt(1, sheet.ColOperationCode, 5102)
	ws.SetString(2, sheet.ColRegistrationID, "86900925/0001-04")
	ws.SetInt(2, sheet.ColOperationCode, 5405)

	result := ValidateTemplate(wb)
	if !result.IsValid || len(result.Errors) != 0 {
		t.Fatalf("result = %+v\n%s", result, FormatErrors(result.Errors))
	}
	if result.RowsValidated != 2 {
		t.Fatalf("RowsValidated = %d, want 2", result.RowsValidated)
	}
}

func TestValidateTemplate_HeaderOnlyIsFatal(t *testing.T) {
	wb, _ := newTemplate(t)

	result := ValidateTemplate(wb)
	if result.IsValid || result.ErrorCount != 1 {
		t.Fatalf("result = %+v", result)
	}
	if err := result.Err(); err == nil || !strings.Contains(err.Error(), "no data rows") {
		t.Fatalf("Err() = %v", err)
	}
}

func TestValidateSheet_RowWarnings(t *testing.T) {
	_, ws := newTemplate(t)
	// Unknown CNPJ over two rows: reported once.
	ws.SetString(1, sheet.ColRegistrationID, "11111111/0001-11")
	ws.SetInt(1, sheet.ColOperationCode, 5102)
	ws.SetString(2, sheet.ColRegistrationID, "11111111/0001-11")
	ws.SetInt(2, sheet.ColOperationCode, 5102)
	// Text CFOP.
	ws.SetString(3, sheet.ColRegistrationID, "86900925/0001-04")
	ws.SetString(3, sheet.ColOperationCode, "subtotal")
	// Blank CNPJ.
	ws.SetInt(4, sheet.ColOperationCode, 5102)

	result := ValidateSheet(ws)
	if !result.IsValid {
		t.Fatalf("row problems must not be fatal: %s", FormatErrors(result.Errors))
	}
	if result.WarningCount != 3 {
		t.Fatalf("WarningCount = %d, want 3:\n%s", result.WarningCount, FormatErrors(result.Errors))
	}

	byRule := map[string][]*ValidationError{}
	for _, e := range result.Errors {
		byRule[e.Rule] = append(byRule[e.Rule], e)
	}
	if got := byRule["operation_code"]; len(got) != 1 || got[0].Row != 4 || got[0].Column != "D" || got[0].Value != "subtotal" {
		t.Errorf("operation_code warnings = %+v", got)
	}
	if got := byRule["registration_id"]; len(got) != 2 || got[0].Row != 2 || got[1].Row != 5 {
		t.Errorf("registration_id warnings = %+v", got)
	}
}

func TestValidationError_Error(t *testing.T) {
	e := &ValidationError{Severity: SeverityWarning, Row: 7, Column: "D", Value: "x", Message: "CFOP is not numeric"}
	if got := e.Error(); got != "[WARNING] Row 7, Column D: CFOP is not numeric (value: 'x')" {
		t.Fatalf("Error() = %q", got)
	}
}
