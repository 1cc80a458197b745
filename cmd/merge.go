// =============================================================================
// Presumed Calculation - Merge Command
// =============================================================================
//
// This file defines the 'merge' command, which runs a merge over the cached
// master template and saves the result.
//
// COMMAND USAGE:
//   presumed merge [files...] [flags]
//
// FLAGS:
//   --out  : Path of the merged workbook (default: output_dir/output_name_format)
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Queue the given files, or every export found in the input directory
//   3. Start the run on the cached template and wait for it
//   4. Save the merged workbook
//   5. Write the run summary
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/presumed-calculation/internal/processor"
	"github.com/ginjaninja78/presumed-calculation/internal/types"
	"github.com/ginjaninja78/presumed-calculation/pkg/utils"
)

// outPath overrides the generated output path.
var outPath string

var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge branch exports into the master template",
	Long: `The merge command writes the CFOP totals of each branch export into the
master template rows of the branch's CNPJ, in the order the files are given.

Without arguments every .xlsx and .xls file in the input directory is
merged, sorted by name.

After the last file, lines that found no master row are appended below the
data, highlighted. A file whose name carries no branch number is skipped
and reported; an unreadable file is skipped and logged unless
strict_extraction is set.

Press Ctrl+C to stop after the current file; the files merged so far are
still saved.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runMerge(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVarP(
		&outPath,
		"out",
		"o",
		"",
		"Path of the merged workbook (default: output_dir/output_name_format)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runMerge(ctx context.Context, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Println("=== Presumed Calculation ===")

	// =========================================================================
	// STEP 1: QUEUE SOURCE FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.TemplateDir)
	if len(files) == 0 {
		files, err = fm.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}
	if len(files) == 0 {
		fmt.Printf("No branch exports found in %s.\n", cfg.InputDir)
		return nil
	}
	fmt.Printf("Found %d file(s) to merge\n", len(files))

	p := processor.New(cfg, logger)
	defer p.Close()
	p.Enqueue(files...)

	// =========================================================================
	// STEP 2: RUN
	// =========================================================================

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	run, err := p.Start(ctx)
	if err != nil {
		var missing *types.TemplateMissingError
		if errors.As(err, &missing) {
			return fmt.Errorf("%w (cache one with 'presumed template <file>')", err)
		}
		return err
	}

	result, runErr := run.Wait()
	for _, f := range result.Files {
		if f.Err != nil {
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(f.Path), f.Err)
			continue
		}
		fmt.Printf("  ✓ %s (branch %d): %d line(s), %d matched, %d unmatched\n",
			filepath.Base(f.Path), f.Branch, f.Lines, f.Stats.Matched, f.Stats.Unmatched)
	}

	// =========================================================================
	// STEP 3: SAVE
	// =========================================================================

	target := outPath
	if target == "" {
		name := utils.GenerateOutputFileName(cfg.OutputNameFormat, map[string]string{
			"uuid": result.RunID.String(),
		})
		target = filepath.Join(cfg.OutputDir, name)
	}
	if err := p.Save(target); err != nil {
		return errors.Join(err, runErr)
	}

	// =========================================================================
	// STEP 4: SUMMARY
	// =========================================================================

	if cfg.SummaryEnabled() {
		path, err := utils.WriteSummaryLog(summarize(result, target), filepath.Dir(target))
		if err != nil {
			logger.Warn("failed to write run summary", zap.Error(err))
		} else {
			fmt.Printf("Summary written to %s\n", path)
		}
	}

	fmt.Println("\n=== Merge Complete ===")
	fmt.Printf("Output:          %s\n", target)
	fmt.Printf("Files:           %d (%d skipped)\n", len(result.Files), result.Failed)
	fmt.Printf("Rows matched:    %d\n", result.Matched)
	fmt.Printf("Lines appended:  %d\n", result.Appended)
	if result.Dropped > 0 {
		fmt.Printf("Lines dropped:   %d (branch not in registration table, see log)\n", result.Dropped)
	}
	fmt.Printf("Time elapsed:    %s\n", result.Duration())

	if runErr != nil {
		return fmt.Errorf("merge finished with errors: %w", runErr)
	}
	return nil
}

// summarize converts a run result into the summary log format.
func summarize(result processor.Result, output string) utils.RunSummary {
	s := utils.RunSummary{
		RunID:          result.RunID.String(),
		StartTime:      result.StartTime,
		EndTime:        result.EndTime,
		TemplateFile:   result.Template,
		OutputFile:     output,
		TotalFiles:     len(result.Files),
		FailedFiles:    result.Failed,
		LinesExtracted: result.Extracted,
		RowsMatched:    result.Matched,
		LinesAppended:  result.Appended,
		LinesDropped:   result.Dropped,
	}
	for _, f := range result.Files {
		fs := utils.FileSummary{
			InputFile: f.Path,
			Branch:    f.Branch,
			Lines:     f.Lines,
			Matched:   f.Stats.Matched,
			Unmatched: f.Stats.Unmatched,
		}
		if f.Err != nil {
			fs.Error = f.Err.Error()
		}
		s.Files = append(s.Files, fs)
	}
	return s
}
