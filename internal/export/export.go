// Package export writes the local attempt history to spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/studyhall/internal/store"
)

const (
	AttemptsSheet = "Attempts"
	SummarySheet  = "Summary"
)

var attemptHeaders = []string{
	"Completed", "User", "Kind", "Title", "Class", "Subjects", "Exam ID",
	"Questions", "Correct", "Percentage", "Passed", "Time Taken",
}

// WriteAttempts writes attempts and their aggregate stats as an XLSX workbook
// to w.
func WriteAttempts(w io.Writer, attempts []store.Attempt, stats store.AttemptStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AttemptsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range attemptHeaders {
		if err := f.SetCellValue(AttemptsSheet, cell(i, 1), h); err != nil {
			return err
		}
	}
	for r, a := range attempts {
		row := []any{
			a.CompletedAt.Format("2006-01-02 15:04"), a.Username, a.Kind, a.Title, a.Class,
			a.SubjectCodes, a.ExamID, a.Total, a.Correct, a.Percentage, passLabel(a.Passed), a.TimeTaken,
		}
		for c, v := range row {
			if err := f.SetCellValue(AttemptsSheet, cell(c, r+2), v); err != nil {
				return err
			}
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(AttemptsSheet, 1, 1, bold); err != nil {
		return err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	summary := [][2]any{
		{"Attempts", stats.Attempts},
		{"Passed", stats.Passed},
		{"Average %", stats.AveragePercentage},
		{"Best %", stats.BestPercentage},
		{"Questions", stats.Questions},
		{"Correct answers", stats.CorrectAnswers},
		{"Total seconds", stats.TotalSeconds},
	}
	for i, kv := range summary {
		if err := f.SetCellValue(SummarySheet, cell(0, i+1), kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(SummarySheet, cell(1, i+1), kv[1]); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

func passLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
