// =============================================================================
// Presumed Calculation - Template Command
// =============================================================================
//
// This file defines the 'template' command, which validates a master
// template and caches it for later merge runs.
//
// COMMAND USAGE:
//   presumed template <file>   # validate and cache
//   presumed template          # show the cached template
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/presumed-calculation/internal/sheet"
	"github.com/ginjaninja78/presumed-calculation/internal/validation"
	"github.com/ginjaninja78/presumed-calculation/pkg/utils"
)

var templateCmd = &cobra.Command{
	Use:   "template [file]",
	Short: "Validate and cache the master template",
	Long: `The template command checks that a workbook has the master layout (CNPJ in
column A, CFOP in column D, data from row 2) and copies it to
template_dir/template_file, where merge runs read it.

Rows with an unknown CNPJ or a non-numeric CFOP are reported as warnings;
the merge leaves them untouched.

Without arguments the command prints the cached template's location.`,
	Args: cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runTemplate(args)
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
}

func runTemplate(args []string) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(args) == 0 {
		path := cfg.TemplatePath()
		if utils.FileExists(path) {
			fmt.Printf("Cached template: %s\n", path)
		} else {
			fmt.Printf("No template cached at %s\n", path)
		}
		return nil
	}
	src := args[0]

	wb, err := sheet.OpenWorkbook(src, cfg.HighlightColor)
	if err != nil {
		return err
	}
	result := validation.ValidateTemplate(wb)
	wb.Close()

	if len(result.Errors) > 0 {
		fmt.Print(validation.FormatErrors(result.Errors))
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("template %s rejected: %w", src, err)
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.TemplateDir)
	dst, err := fm.CacheTemplate(src, cfg.TemplateFile)
	if err != nil {
		return err
	}

	logger.Info("cached master template",
		zap.String("source", src),
		zap.String("file", dst),
		zap.Int("rows", result.RowsValidated),
		zap.Int("warnings", result.WarningCount),
	)
	fmt.Printf("Template cached at %s (%d data row(s), %d warning(s))\n",
		dst, result.RowsValidated, result.WarningCount)
	return nil
}
