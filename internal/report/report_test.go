package report

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"voice-translate-go/internal/aggregator"
	"voice-translate-go/internal/types"
)

func sampleSummary() types.Summary {
	return aggregator.Aggregate([]types.Outcome{
		{Source: types.NewAudioFile("/in/a.mp3"), Output: "/out/a_translation.txt", Success: true, Chunks: 3, Recognized: 2, Duration: 2 * time.Second},
		{Source: types.NewAudioFile("/in/corrupt.mp3"), Err: errors.New("decode failed")},
		{Source: types.NewAudioFile("/in/b.mp3"), Output: "/out/b_translation.txt", Success: true, Chunks: 1, Recognized: 1},
	})
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(sampleSummary(), "translation_batch.log")
	for _, want := range []string{
		"Batch Processing Summary:",
		"Total files processed",
		"Successful",
		"Failed",
		"3 / 4",
		"corrupt.mp3",
		"decode failed",
		"Check translation_batch.log for detailed processing information",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryNoFailures(t *testing.T) {
	s := aggregator.Aggregate([]types.Outcome{{Source: types.NewAudioFile("a.mp3"), Success: true}})
	if out := RenderSummary(s, ""); strings.Contains(out, "Failed file") || strings.Contains(out, "Check ") {
		t.Fatalf("unexpected sections:\n%s", out)
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteXLSX(path, sampleSummary()); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}
	rows, err := readXLSX(path)
	if err != nil {
		t.Fatalf("readXLSX() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3: %v", len(rows), rows)
	}
	if rows[1][0] != "/in/corrupt.mp3" || rows[1][2] != "FALSE" {
		t.Fatalf("failed row = %v", rows[1])
	}
}

// readXLSX loads the outcome rows back from a report (header and totals excluded).
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for i, r := range rows {
		if i == 0 || len(r) == 0 || r[0] == "Total" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
