package sheet

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func newTestWorkbook(t *testing.T) *Workbook {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	return NewWorkbook(f, "")
}

func TestWorksheet_MaxDataRow(t *testing.T) {
	wb := newTestWorkbook(t)
	ws, err := wb.Sheet(0)
	if err != nil {
		t.Fatalf("Sheet(0): %v", err)
	}
	if got := ws.MaxDataRow(); got != -1 {
		t.Fatalf("empty sheet MaxDataRow = %d, want -1", got)
	}

	if err := ws.SetString(4, 0, "x"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if got := ws.MaxDataRow(); got != 4 {
		t.Fatalf("MaxDataRow = %d, want 4", got)
	}
}

func TestWorksheet_Numeric(t *testing.T) {
	wb := newTestWorkbook(t)
	ws, _ := wb.Sheet(0)

	ws.SetInt(0, 0, 5102)
	ws.SetDecimal(0, 1, decimal.RequireFromString("1234.56"))
	ws.SetString(0, 2, "5102")
	ws.SetString(0, 3, "ICMS")

	tests := []struct {
		col  int
		want string
		ok   bool
	}{
		{0, "5102", true},
		{1, "1234.56", true},
		{2, "", false}, // text that looks numeric is still text
		{3, "", false},
		{4, "", false}, // absent cell
	}
	for _, tt := range tests {
		got, ok := ws.Numeric(0, tt.col)
		if ok != tt.ok {
			t.Errorf("col %d: ok = %v, want %v", tt.col, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("col %d: value = %s, want %s", tt.col, got, tt.want)
		}
	}
}

func TestWorksheet_HighlightAppliesSolidFill(t *testing.T) {
	wb := newTestWorkbook(t)
	ws, _ := wb.Sheet(0)
	ws.SetString(0, 0, "flag me")

	if err := ws.Highlight(0, 0); err != nil {
		t.Fatalf("Highlight: %v", err)
	}

	id, err := wb.File().GetCellStyle(ws.Name(), "A1")
	if err != nil {
		t.Fatalf("GetCellStyle: %v", err)
	}
	style, err := wb.File().GetStyle(id)
	if err != nil {
		t.Fatalf("GetStyle: %v", err)
	}
	if style.Fill.Type != "pattern" || style.Fill.Pattern != 1 || len(style.Fill.Color) != 1 ||
		!strings.Contains(strings.ToUpper(style.Fill.Color[0]), "FF0000") {
		t.Fatalf("fill = %+v, want solid %s", style.Fill, DefaultHighlightColor)
	}

	// A second cell with the same base style reuses the derived style.
	ws.Highlight(0, 1)
	id2, _ := wb.File().GetCellStyle(ws.Name(), "B1")
	if id2 != id {
		t.Fatalf("style id = %d, want reused %d", id2, id)
	}
}

func TestWorkbook_SheetOutOfRange(t *testing.T) {
	wb := newTestWorkbook(t)
	if _, err := wb.Sheet(1); err == nil {
		t.Fatal("expected error for missing worksheet")
	}
}

func TestOpenSource_Xlsx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report_1000_jan.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "C13", 5102)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	src, err := OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	defer src.Close()

	r, err := src.Sheet(0)
	if err != nil {
		t.Fatalf("Sheet(0): %v", err)
	}
	got, ok := r.Numeric(12, 2)
	if !ok || got.IntPart() != 5102 {
		t.Fatalf("Numeric(12,2) = %s, %v", got, ok)
	}
}

func TestLegacySheet(t *testing.T) {
	s := legacySheet{
		{"a", "", "5102"},
		{},
		{"", "x"},
		{"", ""},
	}
	if got := s.MaxDataRow(); got != 2 {
		t.Fatalf("MaxDataRow = %d, want 2", got)
	}
	if v, ok := s.Numeric(0, 2); !ok || v.IntPart() != 5102 {
		t.Fatalf("Numeric(0,2) = %s, %v", v, ok)
	}
	if _, ok := s.Numeric(0, 0); ok {
		t.Fatal("text cell reported numeric")
	}
	if got := s.String(9, 9); got != "" {
		t.Fatalf("String out of range = %q", got)
	}
}
