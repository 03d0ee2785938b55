package stats

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Statistics"
	roundsSheet  = "Rounds"
)

// WriteXLSX writes a workbook with a summary sheet mirroring the CSV
// columns and a per-round breakdown sheet.
func WriteXLSX(w io.Writer, snapshot Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	if _, err := f.NewSheet(roundsSheet); err != nil {
		return fmt.Errorf("creating rounds sheet: %w", err)
	}

	header := []any{"Name", "Total Score", "Accuracy", "Correct Answers", "Total Rounds", "Biggest Comeback"}
	if err := setRow(f, summarySheet, 1, header); err != nil {
		return err
	}
	if err := setRow(f, roundsSheet, 1, []any{"Name", "Round", "Points", "Correct"}); err != nil {
		return err
	}

	roundRow := 2
	for i, s := range snapshot {
		row := []any{s.Name, s.TotalScore, s.Accuracy, s.CorrectCount, s.TotalRounds, s.Comeback}
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
		for _, r := range s.RoundPerformance {
			if err := setRow(f, roundsSheet, roundRow, []any{s.Name, r.Round, r.Points, r.Correct}); err != nil {
				return err
			}
			roundRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolving cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("setting %s row %d: %w", sheet, row, err)
	}
	return nil
}
