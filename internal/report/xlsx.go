package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"voice-translate-go/internal/types"
)

const sheetName = "Outcomes"

var headers = []any{"Source", "Output", "Success", "Chunks", "Recognized", "Duration (s)", "Error"}

// WriteXLSX saves one row per outcome, plus a totals row, to a workbook at path.
func WriteXLSX(path string, s types.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, o := range s.Outcomes {
		row := []any{
			o.Source.Path,
			o.Output,
			o.Success,
			o.Chunks,
			o.Recognized,
			o.Duration.Seconds(),
			o.Error(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	totals, err := excelize.CoordinatesToCellName(1, len(s.Outcomes)+3)
	if err != nil {
		return err
	}
	summary := []any{"Total", s.Total, "Succeeded", s.Succeeded, "Failed", s.Failed}
	if err := f.SetSheetRow(sheetName, totals, &summary); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
