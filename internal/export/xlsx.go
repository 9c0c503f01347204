// Package export writes worksheets as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/mathdaily/internal/problemgen"
)

// Sheet names of the workbook.
const (
	QuestionSheet = "문제지"
	AnswerSheet   = "정답"
)

var (
	questionHeader = []any{"번호", "단원", "난이도", "유형", "문제", "①", "②", "③", "④", "그림"}
	answerHeader   = []any{"번호", "정답", "풀이"}
)

// WriteXLSX writes problems as a two-sheet workbook: the worksheet
// itself and an answer key.
func WriteXLSX(w io.Writer, title string, problems []problemgen.Problem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", QuestionSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(AnswerSheet); err != nil {
		return fmt.Errorf("create answer sheet: %w", err)
	}
	if title != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: title, Creator: "mathdaily"}); err != nil {
			return fmt.Errorf("set properties: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeRow(f, QuestionSheet, 1, questionHeader, bold); err != nil {
		return err
	}
	if err := writeRow(f, AnswerSheet, 1, answerHeader, bold); err != nil {
		return err
	}

	for i, p := range problems {
		row := i + 2
		q := []any{i + 1, p.Topic, p.Tier.String(), string(p.Category), p.Question}
		for j := 0; j < problemgen.OptionCount; j++ {
			opt := ""
			if j < len(p.Options) {
				opt = p.Options[j]
			}
			q = append(q, opt)
		}
		hasDiagram := ""
		if p.Diagram != "" {
			hasDiagram = "있음"
		}
		q = append(q, hasDiagram)
		if err := writeRow(f, QuestionSheet, row, q, wrap); err != nil {
			return err
		}
		if err := writeRow(f, AnswerSheet, row, []any{i + 1, p.Answer, p.Explanation}, wrap); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(QuestionSheet, "E", "E", 60); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if err := f.SetColWidth(AnswerSheet, "C", "C", 80); err != nil {
		return fmt.Errorf("set width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	end, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}
