package outwriter

import (
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// sheet is one worksheet of an xlsx workbook.
type sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// writeXLSX saves sheets to path. The first sheet becomes the active one.
func writeXLSX(path string, sheets []sheet) error {
	if path == "" {
		return errors.New("--output-file is required for xlsx output")
	}
	if len(sheets) == 0 {
		return errors.New("no sheets to write")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, s := range sheets {
		var idx int
		var err error
		if i == 0 {
			// Reuse the default sheet so the workbook has no empty leftover
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
			idx, err = f.GetSheetIndex(s.Name)
		} else {
			idx, err = f.NewSheet(s.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		for c, h := range s.Header {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			if err := f.SetCellValue(s.Name, cell, h); err != nil {
				return err
			}
		}
		for r, row := range s.Rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				if err := f.SetCellValue(s.Name, cell, v); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote XLSX to %s\n", path)
	return nil
}
