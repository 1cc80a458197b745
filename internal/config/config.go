// =============================================================================
// Presumed Calculation - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file. Every
// setting has a default, so the tool runs without a configuration file.
//
// CONFIGURATION FILE (config.yaml):
//   template_dir: ~/Documents/PresumedCalculation
//   template_file: example.xlsx
//   input_dir: ./input
//   output_dir: ./output
//   output_name_format: apuracao_{timestamp}.xlsx
//   log_level: info
//   highlight_color: "#FF0000"
//   strict_extraction: false
//   write_summary: true
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// TEMPLATE SETTINGS
	// =========================================================================

	// TemplateDir is the directory holding the cached master template.
	// A leading "~" expands to the user's home directory.
	// Default: "~/Documents/PresumedCalculation"
	TemplateDir string `yaml:"template_dir"`

	// TemplateFile is the file name of the cached master template.
	// Default: "example.xlsx"
	TemplateFile string `yaml:"template_file"`

	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for branch exports when no files are given.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the merged workbook and the run summary.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the merged workbook's file name.
	// Placeholders:
	//   {uuid}      - The run id
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	// Default: "apuracao_{timestamp}.xlsx"
	OutputNameFormat string `yaml:"output_name_format"`

	// HighlightColor is the solid fill of appended, unmatched rows.
	// Default: "#FF0000"
	HighlightColor string `yaml:"highlight_color"`

	// WriteSummary writes a text summary next to the merged workbook.
	// Default: true
	WriteSummary *bool `yaml:"write_summary"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFile, when set, receives a copy of the log output.
	// Default: "" (stderr only)
	LogFile string `yaml:"log_file"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// StrictExtraction stops the run at the first unreadable branch export
	// instead of skipping it.
	// Default: false
	StrictExtraction bool `yaml:"strict_extraction"`
}

// Defaults.
const (
	DefaultTemplateDir      = "~/Documents/PresumedCalculation"
	DefaultTemplateFile     = "example.xlsx"
	DefaultInputDir         = "./input"
	DefaultOutputDir        = "./output"
	DefaultOutputNameFormat = "apuracao_{timestamp}.xlsx"
	DefaultLogLevel         = "info"
	DefaultHighlightColor   = "#FF0000"
)

var (
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	logLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration at path. A missing file yields the defaults.
//
// RETURNS:
//   - The configuration with defaults applied and directories created.
//   - An error if the file cannot be parsed or holds invalid values.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Run on defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file exists. Directories
// are not created.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = DefaultTemplateDir
	}
	cfg.TemplateDir = expandHome(cfg.TemplateDir)
	if cfg.TemplateFile == "" {
		cfg.TemplateFile = DefaultTemplateFile
	}
	if cfg.InputDir == "" {
		cfg.InputDir = DefaultInputDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = DefaultOutputNameFormat
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.HighlightColor == "" {
		cfg.HighlightColor = DefaultHighlightColor
	}
	if cfg.WriteSummary == nil {
		on := true
		cfg.WriteSummary = &on
	}
}

// validate checks option values and creates missing directories.
func validate(cfg *Config) error {
	if !colorPattern.MatchString(cfg.HighlightColor) {
		return fmt.Errorf("highlight_color %q is not of the form #RRGGBB", cfg.HighlightColor)
	}
	if !logLevels[cfg.LogLevel] {
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}

	dirs := []string{
		cfg.InputDir,
		cfg.OutputDir,
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// TemplatePath returns the full path of the cached master template.
func (c *Config) TemplatePath() string {
	return filepath.Join(c.TemplateDir, c.TemplateFile)
}

// SummaryEnabled reports whether a run summary is written.
func (c *Config) SummaryEnabled() bool {
	return c.WriteSummary == nil || *c.WriteSummary
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
