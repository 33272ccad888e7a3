package storage

import (
	"path/filepath"
	"strings"

	"afitower-scraper/models"
)

// UnitWriter is the interface any output backend must satisfy.
type UnitWriter interface {
	Write(units []*models.Unit) error
	Close() error
}

// NewFileWriter picks the file format from the path extension: ".csv" writes
// CSV, anything else an Excel workbook.
func NewFileWriter(path string) (UnitWriter, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return NewCSVWriter(path)
	}
	return NewXLSXWriter(path), nil
}
