package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"afitower-scraper/models"
)

const sheetName = "Sheet1"

// XLSXWriter writes the result table to a single-sheet Excel workbook.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter returns a writer for path. Nothing touches the disk until Write.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write saves a header row and one row per unit, replacing any existing file.
// Null cells are left empty.
func (x *XLSXWriter) Write(units []*models.Unit) error {
	if dir := filepath.Dir(x.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("xlsx: create output dir: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	for r, u := range units {
		for c, v := range u.Row() {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("xlsx: cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("xlsx: write %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return nil
}

// Close is a no-op; the workbook is written and closed in Write.
func (x *XLSXWriter) Close() error {
	return nil
}
