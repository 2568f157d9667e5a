// Package report exports a revealed quiz as a spreadsheet.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-quest/internal/quiz"
)

// SheetName is the worksheet holding the review.
const SheetName = "Quiz Review"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// QuizReview is the data exported for one learner's quiz.
type QuizReview struct {
	ModuleTitle  string
	SectionTitle string
	LearnerID    string
	Result       quiz.Result
	Questions    []quiz.QuestionReview
}

var columns = []string{"#", "Question", "Your answer", "Correct answer", "Result", "Explanation"}

// headerRow is the first row of the question table.
const headerRow = 6

// WriteQuizReview writes r as an .xlsx workbook to w.
func WriteQuizReview(w io.Writer, r QuizReview) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	summary := [][2]any{
		{"Module", r.ModuleTitle},
		{"Section", r.SectionTitle},
		{"Learner", r.LearnerID},
		{"Score", fmt.Sprintf("%d / %d (%d%%)", r.Result.Score, r.Result.Total, r.Result.Percent)},
	}
	for i, kv := range summary {
		if err := setRow(f, i+1, kv[0], kv[1]); err != nil {
			return err
		}
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := setRow(f, headerRow, header...); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), headerRow)
	if err := f.SetCellStyle(SheetName, "A1", "A4", bold); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A6", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, q := range r.Questions {
		result := "Incorrect"
		if q.Correct {
			result = "Correct"
		}
		err := setRow(f, headerRow+1+i,
			i+1,
			q.Question.Prompt,
			option(q.Question.Options, q.Selected),
			option(q.Question.Options, q.Question.CorrectAnswer),
			result,
			q.Question.Explanation,
		)
		if err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "B", "B", 48); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "C", "D", 28); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "F", "F", 60); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}
	return nil
}

func option(options []string, i int) string {
	if i < 0 || i >= len(options) {
		return ""
	}
	return options[i]
}
