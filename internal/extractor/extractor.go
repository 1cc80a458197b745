// =============================================================================
// Presumed Calculation - Source Extractor
// =============================================================================
//
// The extractor reads one branch export and produces the CFOP lines of that
// branch. The branch is encoded in the file name:
//
//   report_1000_jan.xlsx  ->  branch 1000
//
// EXPORT LAYOUT (both scanned worksheets):
//   Rows 1-12 are a fixed preamble. Data rows start at row 13 (index 12).
//
//   | Column C | Column E    | Column F | Column H | Column I |
//   |----------|-------------|----------|----------|----------|
//   | CFOP     | Description | Total    | ICMS base| ICMS     |
//
// FAILURE POLICY:
//   - A malformed file name is an error; no branch is guessed.
//   - A file that cannot be opened or parsed yields an empty extraction plus
//     an *types.ExtractionError so the caller can log it and keep going.
//
// =============================================================================

package extractor

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/presumed-calculation/internal/sheet"
	"github.com/ginjaninja78/presumed-calculation/internal/types"
)

// =============================================================================
// EXPORT LAYOUT
// =============================================================================

// DataStartRow is the first data row of a branch export (0-based).
const DataStartRow = 12

// Source columns (0-based).
const (
	colOperationCode = 2 // C
	colDescription   = 4 // E
	colTotal         = 5 // F
	colTaxBase       = 7 // H
	colTaxAmount     = 8 // I
)

// scannedSheets lists the worksheets read from every export, in merge order.
// A code present in both keeps the entry of the later sheet.
var scannedSheets = []int{0, 1}

// =============================================================================
// EXTRACTOR
// =============================================================================

// Extractor parses branch exports.
type Extractor struct {
	logger *zap.Logger

	// open is swapped in tests.
	open func(path string) (sheet.Source, error)
}

// New creates an Extractor. A nil logger disables logging.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger, open: sheet.OpenSource}
}

// Extract reads the export at path.
//
// RETURNS:
//   - The extraction keyed by the branch parsed from the file name.
//   - *types.MalformedFileNameError with a nil extraction when the name has
//     no numeric branch token.
//   - *types.ExtractionError with an empty, non-nil extraction when the file
//     cannot be read.
func (e *Extractor) Extract(path string) (types.Extraction, error) {
	branch, err := ParseBranch(path)
	if err != nil {
		return nil, err
	}

	lines, err := e.readLines(path)
	if err != nil {
		e.logger.Warn("skipping unreadable source file",
			zap.String("file", path),
			zap.Int("branch", branch),
			zap.Error(err),
		)
		return types.Extraction{}, &types.ExtractionError{Path: path, Err: err}
	}

	e.logger.Debug("extracted source file",
		zap.String("file", path),
		zap.Int("branch", branch),
		zap.Int("lines", len(lines)),
	)
	return types.Extraction{branch: lines}, nil
}

// ParseBranch derives the branch id from the second underscore-delimited
// segment of the file's base name. The extension is ignored, so both
// "x_1000_y.xlsx" and "x_1000.xlsx" resolve to 1000.
func ParseBranch(path string) (int, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(stem, "_")
	if len(parts) < 2 || parts[1] == "" {
		return 0, &types.MalformedFileNameError{Path: path}
	}

	branch, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, &types.MalformedFileNameError{Path: path, Segment: parts[1]}
	}
	return branch, nil
}

func (e *Extractor) readLines(path string) (types.BranchMap, error) {
	src, err := e.open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	lines := make(types.BranchMap)
	for _, index := range scannedSheets {
		ws, err := src.Sheet(index)
		if err != nil {
			return nil, err
		}
		for code, line := range scanSheet(ws) {
			lines[code] = line
		}
	}
	return lines, nil
}

// scanSheet collects every data row whose CFOP cell is numeric. Other rows
// (blank separators, subtotal labels) are skipped without error.
func scanSheet(ws sheet.Reader) types.BranchMap {
	lines := make(types.BranchMap)
	last := ws.MaxDataRow()

	for row := DataStartRow; row <= last; row++ {
		code, ok := ws.Numeric(row, colOperationCode)
		if !ok {
			continue
		}
		line := &types.Line{
			Description:   cleanText(ws.String(row, colDescription)),
			OperationCode: int(code.IntPart()),
			Total:         amount(ws, row, colTotal),
			TaxBase:       amount(ws, row, colTaxBase),
			TaxAmount:     amount(ws, row, colTaxAmount),
		}
		lines[line.OperationCode] = line
	}
	return lines
}

// amount reads a monetary cell; blank or non-numeric cells count as zero.
func amount(ws sheet.Reader, row, col int) decimal.Decimal {
	v, ok := ws.Numeric(row, col)
	if !ok {
		return decimal.Zero
	}
	return v
}

// cleanText composes accents left decomposed by some legacy exporters.
func cleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
