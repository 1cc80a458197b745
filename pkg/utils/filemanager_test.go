package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_1102_jan.xlsx", "a_1000_jan.XLS", "notes.txt", "~$a_1000_jan.xlsx"} {
		touch(t, filepath.Join(dir, name), "")
	}
	if err := os.Mkdir(filepath.Join(dir, "c_1003.xlsx"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileManager(dir, "", "").DiscoverInputFiles()
	if err != nil {
		t.Fatalf("DiscoverInputFiles: %v", err)
	}
	want := []string{filepath.Join(dir, "a_1000_jan.XLS"), filepath.Join(dir, "b_1102_jan.xlsx")}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDiscoverInputFiles_MissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "absent"), "", "")
	if _, err := fm.DiscoverInputFiles(); err == nil {
		t.Fatal("expected error")
	}
}

func TestCacheTemplate(t *testing.T) {
	src := filepath.Join(t.TempDir(), "chosen.xlsx")
	touch(t, src, "template bytes")
	cacheDir := filepath.Join(t.TempDir(), "Documents", "PresumedCalculation")
	fm := NewFileManager("", "", cacheDir)

	dst, err := fm.CacheTemplate(src, "example.xlsx")
	if err != nil {
		t.Fatalf("CacheTemplate: %v", err)
	}
	if dst != filepath.Join(cacheDir, "example.xlsx") {
		t.Fatalf("dst = %q", dst)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "template bytes" {
		t.Fatalf("cached content = %q, %v", data, err)
	}

	// Re-caching the cached copy onto itself keeps its content.
	if _, err := fm.CacheTemplate(dst, "example.xlsx"); err != nil {
		t.Fatalf("CacheTemplate onto itself: %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "template bytes" {
		t.Fatalf("content after self copy = %q", data)
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	got := GenerateOutputFileName("apuracao_{date}_{uuid}", map[string]string{"uuid": "run-1"})
	if !regexp.MustCompile(`^apuracao_\d{8}_run-1\.xlsx$`).MatchString(got) {
		t.Fatalf("name = %q", got)
	}

	got = GenerateOutputFileName("{uuid}.xlsx", nil)
	if !regexp.MustCompile(`^[0-9a-f-]{36}\.xlsx$`).MatchString(got) {
		t.Fatalf("name = %q", got)
	}

	got = GenerateOutputFileName("apuracao_{timestamp}.XLSX", nil)
	if !regexp.MustCompile(`^apuracao_\d{8}_\d{6}\.XLSX$`).MatchString(got) {
		t.Fatalf("name = %q", got)
	}
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	summary := RunSummary{
		RunID:         "run-1",
		StartTime:     start,
		EndTime:       start.Add(2 * time.Second),
		OutputFile:    "apuracao.xlsx",
		TotalFiles:    2,
		FailedFiles:   1,
		RowsMatched:   5,
		LinesAppended: 1,
		Files: []FileSummary{
			{InputFile: "x_1000_y.xlsx", Branch: 1000, Lines: 6, Matched: 5, Unmatched: 1},
			{InputFile: "badname.xlsx", Error: "malformed source file name"},
		},
	}

	path, err := WriteSummaryLog(summary, dir)
	if err != nil {
		t.Fatalf("WriteSummaryLog: %v", err)
	}
	if filepath.Base(path) != "run_summary_20240115_143002.txt" {
		t.Fatalf("path = %q", path)
	}
	data, _ := os.ReadFile(path)
	text := string(data)
	for _, want := range []string{"Run ID:         run-1", "Duration:       2s", "Rows Matched:       5", "Error:     malformed source file name", "Branch:    1000"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}
