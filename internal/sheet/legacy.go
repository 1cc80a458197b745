package sheet

import (
	"fmt"
	"os"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shopspring/decimal"
)

// legacySource reads BIFF8 .xls exports. The reader holds every sheet in
// memory, so the file handle is released as soon as parsing ends.
type legacySource struct {
	sheets [][][]string
}

func openLegacy(path string) (Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open .xls file: %w", err)
	}
	defer file.Close()

	workbook, err := xls.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse .xls file: %w", err)
	}

	src := &legacySource{}
	for _, sh := range workbook.GetSheets() {
		var rows [][]string
		for _, row := range sh.GetRows() {
			var cells []string
			for _, cell := range row.GetCols() {
				cells = append(cells, cell.GetString())
			}
			rows = append(rows, cells)
		}
		src.sheets = append(src.sheets, rows)
	}
	return src, nil
}

func (s *legacySource) Sheet(index int) (Reader, error) {
	if index < 0 || index >= len(s.sheets) {
		return nil, sheetIndexError(index, len(s.sheets))
	}
	return legacySheet(s.sheets[index]), nil
}

func (s *legacySource) Close() error { return nil }

// legacySheet is a parsed .xls worksheet. BIFF number records carry no
// separate text, so any cell whose text parses as a number is numeric.
type legacySheet [][]string

func (s legacySheet) MaxDataRow() int {
	for i := len(s) - 1; i >= 0; i-- {
		for _, v := range s[i] {
			if v != "" {
				return i
			}
		}
	}
	return -1
}

func (s legacySheet) String(row, col int) string {
	if row < 0 || row >= len(s) || col < 0 || col >= len(s[row]) {
		return ""
	}
	return s[row][col]
}

func (s legacySheet) Numeric(row, col int) (decimal.Decimal, bool) {
	return parseNumber(s.String(row, col))
}
