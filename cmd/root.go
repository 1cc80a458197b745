// =============================================================================
// Presumed Calculation - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (presumed)
//   ├── mergeCmd (presumed merge)
//   ├── templateCmd (presumed template)
//   └── versionCmd (presumed version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose). Commands
//   that touch files call loadEnvironment to read the configuration and
//   build the logger.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/presumed-calculation/internal/config"
	"github.com/ginjaninja78/presumed-calculation/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "presumed",
	Short: "Presumed Calculation - Merge branch CFOP exports into the master sheet",
	Long: `Presumed Calculation fills the master tax calculation sheet with the CFOP
totals exported per branch.

Each branch export is named with the branch number in its second
underscore-delimited segment (report_1000_jan.xlsx). Its CFOP lines are
written into the master rows of the matching CNPJ; lines without a master
row are appended below the data and highlighted for review.

Example Usage:
  presumed template ./modelo.xlsx        # Cache the master template
  presumed merge                         # Merge every export in the input directory
  presumed merge a_1000.xlsx b_1102.xls  # Merge specific exports
  presumed merge --out ./apuracao.xlsx   # Choose the output file`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file; defaults apply when it does not exist",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// loadEnvironment reads the configuration and builds the logger.
func loadEnvironment() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
