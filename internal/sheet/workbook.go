package sheet

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DefaultHighlightColor is used when no highlight color is configured.
const DefaultHighlightColor = "#FF0000"

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook wraps an excelize file. It is not safe for concurrent use; the
// processor serializes access to the master workbook.
type Workbook struct {
	f *excelize.File

	// highlightColor is the solid fill applied by Worksheet.Highlight.
	highlightColor string

	// highlighted caches derived style ids keyed by the cell's original
	// style id, so each distinct base style is cloned once.
	highlighted map[int]int
}

// OpenWorkbook opens an .xlsx file from disk.
//
// PARAMETERS:
//   - path: The workbook file.
//   - highlightColor: Fill color in "#RRGGBB" form; "" selects the default.
func OpenWorkbook(path, highlightColor string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return NewWorkbook(f, highlightColor), nil
}

// NewWorkbook wraps an already open excelize file.
func NewWorkbook(f *excelize.File, highlightColor string) *Workbook {
	if highlightColor == "" {
		highlightColor = DefaultHighlightColor
	}
	return &Workbook{
		f:              f,
		highlightColor: highlightColor,
		highlighted:    make(map[int]int),
	}
}

// File exposes the underlying excelize file.
func (w *Workbook) File() *excelize.File {
	return w.f
}

// SheetCount returns the number of worksheets.
func (w *Workbook) SheetCount() int {
	return len(w.f.GetSheetList())
}

// Sheet returns the worksheet at index (0-based, workbook order).
func (w *Workbook) Sheet(index int) (*Worksheet, error) {
	names := w.f.GetSheetList()
	if index < 0 || index >= len(names) {
		return nil, sheetIndexError(index, len(names))
	}
	return &Worksheet{wb: w, name: names[index]}, nil
}

// Recalculate flags every formula for a full recalculation. excelize has no
// calculation engine for whole workbooks; the spreadsheet application
// recomputes dependent formulas when the saved file is opened.
func (w *Workbook) Recalculate() error {
	on := true
	if err := w.f.SetCalcProps(&excelize.CalcPropsOptions{
		FullCalcOnLoad: &on,
		ForceFullCalc:  &on,
	}); err != nil {
		return fmt.Errorf("failed to set calculation properties: %w", err)
	}
	return nil
}

// SaveAs writes the workbook in xlsx format.
func (w *Workbook) SaveAs(path string) error {
	return w.f.SaveAs(path)
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// highlightStyle returns a style id equal to base with the solid highlight
// fill applied.
func (w *Workbook) highlightStyle(base int) (int, error) {
	if id, ok := w.highlighted[base]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	if base != 0 {
		existing, err := w.f.GetStyle(base)
		if err != nil {
			return 0, fmt.Errorf("failed to read style %d: %w", base, err)
		}
		style = existing
	}
	style.Fill = excelize.Fill{
		Type:    "pattern",
		Color:   []string{w.highlightColor},
		Pattern: 1,
	}

	id, err := w.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create highlight style: %w", err)
	}
	w.highlighted[base] = id
	return id, nil
}

// =============================================================================
// WORKSHEET
// =============================================================================

// Worksheet is one sheet of a Workbook. It implements Grid.
type Worksheet struct {
	wb   *Workbook
	name string
}

// Name returns the worksheet name.
func (s *Worksheet) Name() string {
	return s.name
}

func (s *Worksheet) MaxDataRow() int {
	rows, err := s.wb.f.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return -1
	}
	return len(rows) - 1
}

func (s *Worksheet) String(row, col int) string {
	cell, err := cellName(row, col)
	if err != nil {
		return ""
	}
	v, err := s.wb.f.GetCellValue(s.name, cell)
	if err != nil {
		return ""
	}
	return v
}

func (s *Worksheet) Numeric(row, col int) (decimal.Decimal, bool) {
	cell, err := cellName(row, col)
	if err != nil {
		return decimal.Zero, false
	}

	typ, err := s.wb.f.GetCellType(s.name, cell)
	if err != nil {
		return decimal.Zero, false
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
	default:
		// Strings, booleans, dates and errors never count as numbers.
		return decimal.Zero, false
	}

	raw, err := s.wb.f.GetCellValue(s.name, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return decimal.Zero, false
	}
	return parseNumber(raw)
}

func (s *Worksheet) SetString(row, col int, value string) error {
	return s.set(row, col, value)
}

func (s *Worksheet) SetInt(row, col int, value int) error {
	return s.set(row, col, value)
}

func (s *Worksheet) SetDecimal(row, col int, value decimal.Decimal) error {
	return s.set(row, col, value.InexactFloat64())
}

func (s *Worksheet) Highlight(row, col int) error {
	cell, err := cellName(row, col)
	if err != nil {
		return err
	}
	base, err := s.wb.f.GetCellStyle(s.name, cell)
	if err != nil {
		return fmt.Errorf("failed to read style of %s: %w", cell, err)
	}
	id, err := s.wb.highlightStyle(base)
	if err != nil {
		return err
	}
	return s.wb.f.SetCellStyle(s.name, cell, cell, id)
}

func (s *Worksheet) set(row, col int, value interface{}) error {
	cell, err := cellName(row, col)
	if err != nil {
		return err
	}
	if err := s.wb.f.SetCellValue(s.name, cell, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", cell, err)
	}
	return nil
}

// cellName converts 0-based coordinates to an A1 reference.
func cellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}
