// =============================================================================
// Presumed Calculation - Shared Types
// =============================================================================
//
// This package contains the data records shared by the extraction, merge and
// reconciliation stages. Keeping them here avoids import cycles between:
//   - extractor
//   - merge
//   - reconcile
//   - processor
//
// KEY SPACES:
//   Extraction (branch id) -> BranchMap (CFOP) -> *Line
//
// =============================================================================

package types

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LINE
// =============================================================================

// Line is one fiscal line item extracted from a branch export.
//
// All fields are fixed once extraction builds the Line, except
// RegistrationID, which is stamped during the merge pass when the line is
// attributed to a master-sheet group.
type Line struct {
	// RegistrationID is the CNPJ of the master-sheet group the line was
	// attributed to. Empty until the merge assigns it.
	RegistrationID string

	// Description is the free-text label of the operation (column E).
	Description string

	// OperationCode is the CFOP (column C).
	OperationCode int

	// Total is the accounting total of the line (column F).
	Total decimal.Decimal

	// TaxBase is the ICMS calculation base (column H).
	TaxBase decimal.Decimal

	// TaxAmount is the ICMS amount (column I).
	TaxAmount decimal.Decimal
}

// =============================================================================
// BRANCH MAP
// =============================================================================

// BranchMap holds the lines of a single branch keyed by operation code.
// Entries are removed as the merge consumes them.
type BranchMap map[int]*Line

// Take removes and returns the line for code. The second result is false
// when the code is absent, so a code is handed out at most once.
func (m BranchMap) Take(code int) (*Line, bool) {
	line, ok := m[code]
	if ok {
		delete(m, code)
	}
	return line, ok
}

// Drain removes every remaining line and returns them ordered by operation
// code. Map iteration order is random; appended rows must not be.
func (m BranchMap) Drain() []*Line {
	if len(m) == 0 {
		return nil
	}
	codes := make([]int, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	lines := make([]*Line, 0, len(codes))
	for _, code := range codes {
		lines = append(lines, m[code])
		delete(m, code)
	}
	return lines
}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extraction maps a branch identifier to its BranchMap. The extractor yields
// one branch per source file; the shape allows more.
type Extraction map[int]BranchMap

// Len returns the number of lines across every branch.
func (e Extraction) Len() int {
	n := 0
	for _, m := range e {
		n += len(m)
	}
	return n
}

// Branches returns the branch ids in ascending order.
func (e Extraction) Branches() []int {
	ids := make([]int, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// =============================================================================
// UNMATCHED SET
// =============================================================================

// UnmatchedSet is the run-scoped, append-only accumulator of lines no
// master-sheet row consumed. It is owned by the processor and lent to each
// merge call.
type UnmatchedSet struct {
	lines []*Line
}

// Add stamps each line with registrationID and appends it.
func (s *UnmatchedSet) Add(registrationID string, lines ...*Line) {
	for _, line := range lines {
		line.RegistrationID = registrationID
		s.lines = append(s.lines, line)
	}
}

// Lines returns the accumulated lines in insertion order.
func (s *UnmatchedSet) Lines() []*Line {
	return s.lines
}

// Len returns the number of accumulated lines.
func (s *UnmatchedSet) Len() int {
	return len(s.lines)
}

// Clear empties the set after a successful flush.
func (s *UnmatchedSet) Clear() {
	s.lines = nil
}
