// =============================================================================
// Presumed Calculation - Spreadsheet Grid
// =============================================================================
//
// This package is the only place that talks to spreadsheet libraries. The
// merge stages see a worksheet as a grid addressed by 0-based (row, column)
// pairs, the same numbering the column constants below use.
//
// BACKENDS:
//   - .xlsx / .xlsm (read + write): github.com/xuri/excelize/v2
//   - .xls (read only, legacy exports): github.com/shakinm/xlsReader
//
// =============================================================================

package sheet

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MASTER SHEET LAYOUT
// =============================================================================

// Column positions in the master sheet (0-based, A=0).
const (
	ColRegistrationID = 0 // A
	ColOperationCode  = 3 // D
	ColDescription    = 4 // E
	ColTotal          = 6 // G
	ColTaxBase        = 7 // H
	ColTaxAmount      = 8 // I
)

// FirstDataRow is the first master-sheet row after the header.
const FirstDataRow = 1

// =============================================================================
// INTERFACES
// =============================================================================

// Reader is read-only access to one worksheet.
type Reader interface {
	// MaxDataRow returns the index of the last populated row, or -1 when
	// the worksheet is empty.
	MaxDataRow() int

	// String returns the cell text, or "" for an absent cell.
	String(row, col int) string

	// Numeric returns the cell value when the cell exists and holds a number.
	Numeric(row, col int) (decimal.Decimal, bool)
}

// Grid is a writable worksheet.
type Grid interface {
	Reader

	SetString(row, col int, value string) error
	SetInt(row, col int, value int) error
	SetDecimal(row, col int, value decimal.Decimal) error

	// Highlight paints the cell with the workbook's solid highlight fill.
	Highlight(row, col int) error
}

// Source is a workbook opened for extraction.
type Source interface {
	// Sheet returns the worksheet at index (0-based).
	Sheet(index int) (Reader, error)
	Close() error
}

// OpenSource opens a branch export, choosing the backend by extension.
func OpenSource(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		return openLegacy(path)
	default:
		wb, err := OpenWorkbook(path, "")
		if err != nil {
			return nil, err
		}
		return workbookSource{wb}, nil
	}
}

type workbookSource struct {
	wb *Workbook
}

func (s workbookSource) Sheet(index int) (Reader, error) {
	return s.wb.Sheet(index)
}

func (s workbookSource) Close() error {
	return s.wb.Close()
}

// parseNumber turns raw cell text into a decimal. Blank text is not a number.
func parseNumber(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func sheetIndexError(index, count int) error {
	return fmt.Errorf("worksheet %d not found (workbook has %d)", index, count)
}
