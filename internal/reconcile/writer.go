// =============================================================================
// Presumed Calculation - Reconciliation Writer
// =============================================================================
//
// The writer appends the lines no master row consumed below the last data
// row of the master sheet, one row per line, in the columns the merge uses:
//
//   | A (CNPJ) | D (CFOP) | E (Description) | G (Total) | H (Base) | I (ICMS) |
//
// Every written cell is highlighted so a reviewer can find the lines that
// need a manual decision.
//
// Appending is not idempotent. Appending the same set twice writes the rows
// twice; the caller clears the set after a successful flush.
//
// =============================================================================

package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ginjaninja78/presumed-calculation/internal/sheet"
	"github.com/ginjaninja78/presumed-calculation/internal/types"
)

// Writer appends unmatched lines to a master grid.
type Writer struct {
	logger *zap.Logger
}

// New creates a Writer. A nil logger disables logging.
func New(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// AppendUnmatched writes one flagged row per line of set starting at
// startRow (0-based) and returns the next free row.
func (w *Writer) AppendUnmatched(grid sheet.Grid, set *types.UnmatchedSet, startRow int) (int, error) {
	row := startRow
	for _, line := range set.Lines() {
		if err := writeRow(grid, row, line); err != nil {
			return row, fmt.Errorf("failed to append unmatched CFOP %d for %s: %w",
				line.OperationCode, line.RegistrationID, err)
		}
		row++
	}

	if n := row - startRow; n > 0 {
		w.logger.Info("appended unmatched lines",
			zap.Int("count", n),
			zap.Int("first_row", startRow+1),
		)
	}
	return row, nil
}

func writeRow(grid sheet.Grid, row int, line *types.Line) error {
	cells := []struct {
		col   int
		write func() error
	}{
		{sheet.ColRegistrationID, func() error { return grid.SetString(row, sheet.ColRegistrationID, line.RegistrationID) }},
		{sheet.ColOperationCode, func() error { return grid.SetInt(row, sheet.ColOperationCode, line.OperationCode) }},
		{sheet.ColDescription, func() error { return grid.SetString(row, sheet.ColDescription, line.Description) }},
		{sheet.ColTotal, func() error { return grid.SetDecimal(row, sheet.ColTotal, line.Total) }},
		{sheet.ColTaxBase, func() error { return grid.SetDecimal(row, sheet.ColTaxBase, line.TaxBase) }},
		{sheet.ColTaxAmount, func() error { return grid.SetDecimal(row, sheet.ColTaxAmount, line.TaxAmount) }},
	}

	for _, c := range cells {
		if err := c.write(); err != nil {
			return err
		}
		if err := grid.Highlight(row, c.col); err != nil {
			return err
		}
	}
	return nil
}
