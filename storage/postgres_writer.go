package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"afitower-scraper/models"
)

// PostgresWriter mirrors the result table into PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter. An unreachable server is an
// immediate error.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS units (
			id           SERIAL PRIMARY KEY,
			complex      TEXT    NOT NULL,
			faza         TEXT,
			building     INTEGER NOT NULL,
			section      TEXT    NOT NULL DEFAULT '',
			floor        TEXT    NOT NULL DEFAULT '',
			floor_number TEXT,
			number       TEXT    NOT NULL DEFAULT '',
			rooms        TEXT,
			area         TEXT    NOT NULL DEFAULT '',
			area_living  TEXT,
			area_kitchen TEXT,
			price        BIGINT  NOT NULL,
			price_sale   BIGINT,
			furnished    TEXT    NOT NULL DEFAULT '',
			is_furniture TEXT,
			type         TEXT,
			plan         TEXT,
			source       TEXT    UNIQUE NOT NULL,
			deadline     TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_units_price ON units(price);
		CREATE INDEX IF NOT EXISTS idx_units_rooms ON units(rooms);
	`)
	return err
}

// Write replaces the table content with units. The delete and the batched
// inserts share one transaction, so a failed batch leaves the old rows intact.
func (pw *PostgresWriter) Write(units []*models.Unit) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM units"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(units); i += batchSize {
		end := i + batchSize
		if end > len(units) {
			end = len(units)
		}
		query, args := insertQuery(units[i:end])
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// insertQuery builds a multi-row INSERT with one placeholder per column.
func insertQuery(batch []*models.Unit) (string, []any) {
	cols := len(models.Columns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*cols)

	for idx, u := range batch {
		ph := make([]string, cols)
		for c := range ph {
			ph[c] = fmt.Sprintf("$%d", idx*cols+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs, u.Row()...)
	}

	query := fmt.Sprintf(`
		INSERT INTO units (%s)
		VALUES %s
		ON CONFLICT (source) DO NOTHING
	`, strings.Join(models.Columns, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored units, used by the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.Unit, error) {
	rows, err := pw.db.Query(`
		SELECT complex, building, section, floor, number, rooms, area,
		       price, price_sale, furnished, source
		FROM units
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var units []*models.Unit
	for rows.Next() {
		u := &models.Unit{}
		if err := rows.Scan(
			&u.Complex, &u.Building, &u.Section, &u.Floor, &u.Number, &u.Rooms, &u.Area,
			&u.Price, &u.PriceSale, &u.Furnished, &u.Source,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
