package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/presumed-calculation/internal/merge"
	"github.com/ginjaninja78/presumed-calculation/internal/processor"
)

func TestSummarize(t *testing.T) {
	start := time.Now()
	result := processor.Result{
		RunID:     uuid.New(),
		StartTime: start,
		EndTime:   start.Add(time.Second),
		Failed:    1,
		Matched:   3,
		Appended:  2,
		Files: []processor.FileResult{
			{Path: "x_1000_y.xlsx", Branch: 1000, Lines: 5, Stats: merge.Stats{Matched: 3, Unmatched: 2}},
			{Path: "badname.xlsx", Err: errors.New("malformed")},
		},
	}

	s := summarize(result, "out.xlsx")
	if s.RunID != result.RunID.String() || s.TotalFiles != 2 || s.FailedFiles != 1 || s.OutputFile != "out.xlsx" {
		t.Fatalf("summary = %+v", s)
	}
	if s.Files[0].Matched != 3 || s.Files[0].Unmatched != 2 || s.Files[0].Error != "" {
		t.Fatalf("first file = %+v", s.Files[0])
	}
	if s.Files[1].Error != "malformed" {
		t.Fatalf("second file = %+v", s.Files[1])
	}
}
