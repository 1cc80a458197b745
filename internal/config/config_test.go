package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TemplateFile != DefaultTemplateFile || cfg.LogLevel != "info" ||
		cfg.HighlightColor != DefaultHighlightColor || cfg.OutputNameFormat != DefaultOutputNameFormat {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if !cfg.SummaryEnabled() || cfg.StrictExtraction {
		t.Fatalf("summary = %v, strict = %v", cfg.SummaryEnabled(), cfg.StrictExtraction)
	}
	if strings.HasPrefix(cfg.TemplateDir, "~") {
		t.Fatalf("TemplateDir not expanded: %q", cfg.TemplateDir)
	}
	for _, d := range []string{DefaultInputDir, DefaultOutputDir} {
		if info, err := os.Stat(filepath.Join(dir, d)); err != nil || !info.IsDir() {
			t.Errorf("directory %s not created: %v", d, err)
		}
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
template_dir: `+filepath.Join(dir, "tpl")+`
template_file: master.xlsx
input_dir: `+filepath.Join(dir, "in")+`
output_dir: `+filepath.Join(dir, "out")+`
log_level: DEBUG
highlight_color: "#00ff00"
strict_extraction: true
write_summary: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := cfg.TemplatePath(), filepath.Join(dir, "tpl", "master.xlsx"); got != want {
		t.Errorf("TemplatePath = %q, want %q", got, want)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if !cfg.StrictExtraction || cfg.SummaryEnabled() {
		t.Errorf("strict = %v, summary = %v", cfg.StrictExtraction, cfg.SummaryEnabled())
	}
	// The template directory is created by the template command, not on load.
	if _, err := os.Stat(filepath.Join(dir, "tpl")); !os.IsNotExist(err) {
		t.Errorf("template dir created on load: %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	dirs := "input_dir: " + filepath.Join(dir, "in") + "\noutput_dir: " + filepath.Join(dir, "out") + "\n"

	tests := []struct {
		name string
		body string
	}{
		{"color", dirs + `highlight_color: red`},
		{"short color", dirs + `highlight_color: "#F00"`},
		{"log level", dirs + `log_level: trace`},
		{"yaml", `template_dir: [unterminated`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/Documents/x"); got != filepath.Join(home, "Documents", "x") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("./rel"); got != "./rel" {
		t.Errorf("expandHome(./rel) = %q", got)
	}
	if got := expandHome("~user/x"); got != "~user/x" {
		t.Errorf("expandHome(~user/x) = %q", got)
	}
}
