// =============================================================================
// Presumed Calculation - Main Entry Point
// =============================================================================
//
// USAGE:
//   presumed template <file>  - Validate and cache the master template
//   presumed merge [files...] - Merge branch exports into the master template
//   presumed version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Extraction, merge, reconciliation and run orchestration
//   - pkg/utils/ : File discovery, template cache, output naming, summaries
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/presumed-calculation/cmd"
)

func main() {
	cmd.Execute()
}
