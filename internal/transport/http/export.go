package http

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"quiz-portal/internal/domain"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	summarySheet   = "Quiz Summary"
	responsesSheet = "Responses"
	columnWidth    = 20
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

func exportFilename(title string) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(title, "_"), "_")
	if name == "" {
		name = "quiz"
	}
	return name + "_report.xlsx"
}

// writeWorkbook renders a report as a two sheet workbook: the quiz summary
// with its question breakdown, then one row per participant session.
func writeWorkbook(w io.Writer, report domain.QuizReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(responsesSheet); err != nil {
		return err
	}

	summary := [][]interface{}{
		{"Quiz Summary"},
		{"Title", report.Quiz.Title},
		{"Total Questions", len(report.Quiz.Questions)},
		{"Total Marks", report.TotalMarks},
		{"Total Attempts", report.Attempts},
		{"Average Score", fmt.Sprintf("%.2f/%d", report.AverageScore, report.TotalMarks)},
		{},
		{"Questions Breakdown"},
		{"Question", "Marks", "Options", "Correct Answer"},
	}
	for _, q := range report.Quiz.Questions {
		summary = append(summary, []interface{}{
			q.Text,
			q.Marks,
			strings.Join(q.Options, " | "),
			fmt.Sprintf("Option %d", q.CorrectAnswer+1),
		})
	}

	responses := [][]interface{}{
		{"Student Responses"},
		{"Username", "Score", "Status", "Date"},
	}
	for _, s := range report.Sessions {
		score, status := "-", "In Progress"
		if s.Completed {
			status = "Completed"
		}
		if s.Score != nil {
			score = fmt.Sprintf("%d/%d", *s.Score, report.TotalMarks)
		}
		responses = append(responses, []interface{}{s.Username, score, status, s.CreatedAt.Format("2006-01-02")})
	}

	if err := setRows(f, summarySheet, summary); err != nil {
		return err
	}
	if err := setRows(f, responsesSheet, responses); err != nil {
		return err
	}
	return f.Write(w)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "D", columnWidth)
}
