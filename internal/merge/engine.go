// =============================================================================
// Presumed Calculation - Merge Engine
// =============================================================================
//
// The engine writes extracted CFOP totals into the master sheet.
//
// MASTER SHEET:
//   Rows are grouped into contiguous runs sharing the CNPJ in column A. Each
//   group resolves to a branch through the registration table; the group's
//   rows then consume lines of that branch by the CFOP in column D.
//
//   | A (CNPJ)         | D (CFOP) | E (Description) | G (Total) | H (Base) | I (ICMS) |
//   |------------------|----------|-----------------|-----------|----------|----------|
//   | 86900925/0001-04 | 5102     | Venda           | <- written| <- written| <- written|
//
// GROUP BOUNDARIES:
//   When the CNPJ changes, and again after the last row, the lines the
//   previous group left unconsumed move to the unmatched set stamped with
//   that group's CNPJ. A line is consumed or flushed at most once.
//
// =============================================================================

package merge

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/presumed-calculation/internal/branch"
	"github.com/ginjaninja78/presumed-calculation/internal/sheet"
	"github.com/ginjaninja78/presumed-calculation/internal/types"
)

// Stats summarizes one Merge call.
type Stats struct {
	// Groups is the number of CNPJ groups that resolved to a branch.
	Groups int

	// UnresolvedGroups is the number of groups whose CNPJ is not in the
	// registration table. Their rows are left untouched.
	UnresolvedGroups int

	// Matched is the number of master rows that received totals.
	Matched int

	// Unmatched is the number of lines moved to the unmatched set.
	Unmatched int

	// Dropped counts, per branch, lines of branches that no group consumed
	// and that the registration table cannot attribute to a CNPJ.
	Dropped map[int]int
}

// DroppedTotal returns the number of dropped lines across branches.
func (s Stats) DroppedTotal() int {
	n := 0
	for _, c := range s.Dropped {
		n += c
	}
	return n
}

// Engine merges extractions into a master grid.
type Engine struct {
	logger *zap.Logger
}

// New creates an Engine. A nil logger disables logging.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// state tracks the group being walked.
type state struct {
	registrationID string
	lines          types.BranchMap
}

// Merge walks the master grid top to bottom, consuming lines from ext and
// appending leftovers to carry. ext is drained by the call.
func (e *Engine) Merge(grid sheet.Grid, ext types.Extraction, carry *types.UnmatchedSet) (Stats, error) {
	stats := Stats{Dropped: map[int]int{}}
	attached := make(map[int]bool)
	before := carry.Len()

	var cur state
	flush := func() {
		if cur.lines != nil {
			carry.Add(cur.registrationID, cur.lines.Drain()...)
		}
	}

	last := grid.MaxDataRow()
	for row := sheet.FirstDataRow; row <= last; row++ {
		id := strings.TrimSpace(grid.String(row, sheet.ColRegistrationID))
		if id == "" {
			continue
		}

		if id != cur.registrationID {
			flush()
			cur = state{registrationID: id}

			b := branch.Resolve(id)
			if b == branch.None {
				stats.UnresolvedGroups++
				e.logger.Debug("registration id not in table", zap.String("cnpj", id), zap.Int("row", row+1))
				continue
			}
			stats.Groups++
			attached[b] = true
			cur.lines = ext[b]
		}

		if cur.lines == nil {
			continue
		}

		code, ok := grid.Numeric(row, sheet.ColOperationCode)
		if !ok {
			continue
		}
		line, ok := cur.lines.Take(int(code.IntPart()))
		if !ok {
			continue
		}
		if err := writeTotals(grid, row, line); err != nil {
			return stats, err
		}
		stats.Matched++
	}
	flush()

	e.settleOrphans(ext, attached, carry, &stats)

	stats.Unmatched = carry.Len() - before
	return stats, nil
}

// settleOrphans handles branches that no master group consumed. Branches the
// registration table knows are attributed to their CNPJ; the rest are
// counted as dropped.
func (e *Engine) settleOrphans(ext types.Extraction, attached map[int]bool, carry *types.UnmatchedSet, stats *Stats) {
	for _, b := range ext.Branches() {
		if attached[b] {
			continue
		}
		lines := ext[b].Drain()
		if len(lines) == 0 {
			continue
		}
		if id, ok := branch.RegistrationFor(b); ok {
			carry.Add(id, lines...)
			e.logger.Info("branch has no rows in master sheet; lines will be appended",
				zap.Int("branch", b), zap.String("cnpj", id), zap.Int("count", len(lines)))
			continue
		}
		stats.Dropped[b] += len(lines)
		e.logger.Warn("branch has no registration id; lines dropped",
			zap.Int("branch", b), zap.Int("count", len(lines)))
	}
}

func writeTotals(grid sheet.Grid, row int, line *types.Line) error {
	if err := grid.SetDecimal(row, sheet.ColTotal, line.Total); err != nil {
		return fmt.Errorf("failed to write total at row %d: %w", row+1, err)
	}
	if err := grid.SetDecimal(row, sheet.ColTaxBase, line.TaxBase); err != nil {
		return fmt.Errorf("failed to write tax base at row %d: %w", row+1, err)
	}
	if err := grid.SetDecimal(row, sheet.ColTaxAmount, line.TaxAmount); err != nil {
		return fmt.Errorf("failed to write tax amount at row %d: %w", row+1, err)
	}
	return nil
}
