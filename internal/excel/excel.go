// Package excel reads uploaded purchase-list workbooks and renders result
// sheets. Column layouts match the workbooks schools actually circulate.
package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AH100-1/book-project/internal/models"
)

// InputColumns is the expected header row of an uploaded workbook.
// Missing columns are tolerated and read as blank.
var InputColumns = []string{"학교명", "도서명", "저자", "출판사"}

// OutputColumns is the header row of a result sheet.
var OutputColumns = []string{"학교명", "도서명", "저자", "출판사", "ISBN13", "검색학교", "존재여부", "사유"}

// ReadRecords parses the first sheet of an XLSX workbook into book records.
// The first row is the header; cells are read as trimmed strings. Rows with
// all four fields blank are skipped.
func ReadRecords(path string) ([]models.BookRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Map known columns by header name; unknown headers are ignored.
	colIndex := make(map[string]int)
	for i, header := range rows[0] {
		colIndex[strings.TrimSpace(header)] = i
	}

	cell := func(row []string, column string) string {
		idx, ok := colIndex[column]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []models.BookRecord
	for _, row := range rows[1:] {
		rec := models.BookRecord{
			School:    cell(row, "학교명"),
			Title:     cell(row, "도서명"),
			Author:    cell(row, "저자"),
			Publisher: cell(row, "출판사"),
		}
		if rec.School == "" && rec.Title == "" && rec.Author == "" && rec.Publisher == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteOutcomes renders outcomes to an XLSX file at path, rows in outcome
// order. Parent directories are created as needed.
func WriteOutcomes(path string, outcomes []models.VerificationOutcome) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, header := range OutputColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for rowIdx, out := range outcomes {
		values := []string{
			out.Record.School,
			out.Record.Title,
			out.Record.Author,
			out.Record.Publisher,
			out.ISBN13,
			out.MatchedSchool,
			out.ExistsMark,
			out.Reason,
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// ResultWriter writes completed jobs' result sheets into a directory,
// named result_<jobID>.xlsx. It implements engine.ResultWriter.
type ResultWriter struct {
	dir string
}

// NewResultWriter creates a ResultWriter targeting dir.
func NewResultWriter(dir string) *ResultWriter {
	return &ResultWriter{dir: dir}
}

// WriteResults renders the outcomes and returns the result filename.
func (w *ResultWriter) WriteResults(jobID string, outcomes []models.VerificationOutcome) (string, error) {
	filename := fmt.Sprintf("result_%s.xlsx", jobID)
	if err := WriteOutcomes(filepath.Join(w.dir, filename), outcomes); err != nil {
		return "", err
	}
	return filename, nil
}
