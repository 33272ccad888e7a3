package storage

import (
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"afitower-scraper/models"
)

func sampleUnits() []*models.Unit {
	return []*models.Unit{
		{
			Complex: "Afi Tower", Building: 1, Section: "А", Floor: "12", Number: "Квартира № 1203",
			Rooms: sql.NullString{String: "2", Valid: true}, Area: "54.3",
			Price: 21000000, PriceSale: sql.NullInt64{Int64: 19500000, Valid: true},
			Furnished: "С отделкой", Source: "https://afitower.ru/flat/1203",
		},
		{
			Complex: "Afi Tower", Building: 1, Section: "Б", Floor: "7", Number: "Квартира № 77",
			Area: "20", Price: 11000000, Furnished: "Без отделки", Source: "https://afitower.ru/flat/77",
		},
	}
}

func column(name string) int {
	for i, c := range models.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func TestXLSXWriterWritesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.xlsx")
	w := NewXLSXWriter(path)
	if err := w.Write(sampleUnits()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want header + 2", len(rows))
	}
	if got := strings.Join(rows[0], ","); got != strings.Join(models.Columns, ",") {
		t.Errorf("header: got %s", got)
	}

	first := rows[1]
	if first[column("price")] != "21000000" || first[column("price_sale")] != "19500000" {
		t.Errorf("prices: got %q / %q", first[column("price")], first[column("price_sale")])
	}
	if first[column("source")] != "https://afitower.ru/flat/1203" {
		t.Errorf("source: got %q", first[column("source")])
	}
	if first[column("faza")] != "" {
		t.Errorf("placeholder column should be empty, got %q", first[column("faza")])
	}

	second := rows[2]
	if second[column("rooms")] != "" || second[column("price_sale")] != "" {
		t.Errorf("null cells should be empty: rooms %q sale %q", second[column("rooms")], second[column("price_sale")])
	}
}

func TestXLSXWriterOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.xlsx")
	w := NewXLSXWriter(path)
	if err := w.Write(sampleUnits()); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(sampleUnits()[:1]); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows(sheetName)
	if len(rows) != 2 {
		t.Errorf("rows after rewrite: got %d, want 2", len(rows))
	}
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	w, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if _, ok := w.(*CSVWriter); !ok {
		t.Fatalf("expected *CSVWriter for .csv, got %T", w)
	}
	if err := w.Write(sampleUnits()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("records: got %d, want 3", len(records))
	}
	if records[2][column("number")] != "Квартира № 77" {
		t.Errorf("number: got %q", records[2][column("number")])
	}
	if records[2][column("price_sale")] != "" {
		t.Errorf("missing sale price should be empty, got %q", records[2][column("price_sale")])
	}
}

func TestNewFileWriterDefaultsToXLSX(t *testing.T) {
	w, err := NewFileWriter(filepath.Join(t.TempDir(), "result.xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := w.(*XLSXWriter); !ok {
		t.Errorf("expected *XLSXWriter, got %T", w)
	}
}

func TestInsertQueryPlaceholders(t *testing.T) {
	query, args := insertQuery(sampleUnits())
	cols := len(models.Columns)
	if len(args) != 2*cols {
		t.Errorf("args: got %d, want %d", len(args), 2*cols)
	}
	if !strings.Contains(query, "($20,") || !strings.Contains(query, ",$38)") {
		t.Errorf("second row placeholders missing:\n%s", query)
	}
	if args[column("price_sale")+cols] != nil {
		t.Errorf("null sale price should bind as nil, got %v", args[column("price_sale")+cols])
	}
}
