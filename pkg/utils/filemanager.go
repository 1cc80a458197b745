// =============================================================================
// Presumed Calculation - File Manager Utility
// =============================================================================
//
// This module provides the file operations around a merge run:
//   - Branch export discovery in the input directory
//   - Master template caching
//   - Output file naming
//   - Run summary generation
//
// TEMPLATE CACHE:
//   The master template chosen by the user is copied into the template
//   directory under a fixed name. Later runs read the cached copy, so the
//   original can be moved or edited without affecting them.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// sourceExtensions lists the branch export formats picked up by discovery.
var sourceExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for a run.
type FileManager struct {
	// InputDir is scanned for branch exports.
	InputDir string

	// OutputDir receives merged workbooks and summaries.
	OutputDir string

	// TemplateDir holds the cached master template.
	TemplateDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, templateDir string) *FileManager {
	return &FileManager{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		TemplateDir: templateDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{
		fm.InputDir,
		fm.OutputDir,
		fm.TemplateDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the .xlsx and .xls files directly inside the
// input directory, sorted by name. Spreadsheet lock files ("~$...") and
// subdirectories are skipped.
//
// RETURNS:
//   - A slice of file paths in enqueue order.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		if sourceExtensions[strings.ToLower(filepath.Ext(name))] {
			result = append(result, filepath.Join(fm.InputDir, name))
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// TEMPLATE CACHE
// =============================================================================

// CacheTemplate copies src into the template directory as name, creating
// the directory when needed.
//
// RETURNS:
//   - The path of the cached copy.
//   - An error if the copy fails.
func (fm *FileManager) CacheTemplate(src, name string) (string, error) {
	if err := os.MkdirAll(fm.TemplateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create template directory: %w", err)
	}

	dst := filepath.Join(fm.TemplateDir, name)
	if same, err := samePath(src, dst); err == nil && same {
		return dst, nil
	}

	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("failed to cache template: %w", err)
	}
	return dst, nil
}

func samePath(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ia, ib), nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates the merged workbook's file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - The run id, or a random UUID when params has none
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//   - params: Extra placeholder values; "uuid" overrides the random UUID.
//
// RETURNS:
//   - The generated file name, always ending in ".xlsx".
//
// EXAMPLE:
//   format: "apuracao_{date}_{uuid}.xlsx"
//   output: "apuracao_20240115_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xlsx"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xlsx") {
		result += ".xlsx"
	}
	return result
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a merge run.
type RunSummary struct {
	RunID          string
	StartTime      time.Time
	EndTime        time.Time
	TemplateFile   string
	OutputFile     string
	TotalFiles     int
	FailedFiles    int
	LinesExtracted int
	RowsMatched    int
	LinesAppended  int
	LinesDropped   int
	Files          []FileSummary
}

// FileSummary describes one source file of a run.
type FileSummary struct {
	InputFile string
	Branch    int
	Lines     int
	Matched   int
	Unmatched int
	Error     string
}

// WriteSummaryLog writes a run summary to a text file in outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("run_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	header := fmt.Sprintf("Presumed Calculation - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Template:       %s\n"+
		"  Output:         %s\n\n"+
		"Statistics:\n"+
		"  Source Files:       %d\n"+
		"  Failed:             %d\n"+
		"  Lines Extracted:    %d\n"+
		"  Rows Matched:       %d\n"+
		"  Lines Appended:     %d\n"+
		"  Lines Dropped:      %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TemplateFile,
		summary.OutputFile,
		summary.TotalFiles,
		summary.FailedFiles,
		summary.LinesExtracted,
		summary.RowsMatched,
		summary.LinesAppended,
		summary.LinesDropped)
	writer.WriteString(header)

	if len(summary.Files) > 0 {
		writer.WriteString("Source Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, fs := range summary.Files {
			writer.WriteString(fmt.Sprintf("  File:      %s\n", fs.InputFile))
			if fs.Error != "" {
				writer.WriteString(fmt.Sprintf("  Error:     %s\n\n", fs.Error))
				continue
			}
			writer.WriteString(fmt.Sprintf("  Branch:    %d\n", fs.Branch))
			writer.WriteString(fmt.Sprintf("  Lines:     %d\n", fs.Lines))
			writer.WriteString(fmt.Sprintf("  Matched:   %d\n", fs.Matched))
			writer.WriteString(fmt.Sprintf("  Unmatched: %d\n\n", fs.Unmatched))
		}
	}

	footer := "================================================================================\n" +
		"End of Summary\n"
	writer.WriteString(footer)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
