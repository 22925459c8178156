// database/calls_store.go
package database

import (
	"fmt"
	"log"

	"github.com/citydesk/lapdcalls/models"
)

const createCallsTableSQL = `
	CREATE TABLE IF NOT EXISTS calls_for_service (
		incident_number TEXT NOT NULL,
		primary_date    TIMESTAMP NOT NULL,
		year            INTEGER,
		month           INTEGER,
		day_of_week     TEXT,
		hour            INTEGER,
		call_type_code  TEXT,
		call_type_text  TEXT,
		area_occ        TEXT,
		source_dataset  TEXT,
		source_year     INTEGER
	)`

// The same indexes the analysis queries lean on.
var callsIndexSQL = []string{
	"CREATE INDEX IF NOT EXISTS idx_primary_date ON calls_for_service(primary_date)",
	"CREATE INDEX IF NOT EXISTS idx_year ON calls_for_service(year)",
	"CREATE INDEX IF NOT EXISTS idx_call_type ON calls_for_service(call_type_text)",
	"CREATE INDEX IF NOT EXISTS idx_area ON calls_for_service(area_occ)",
}

// ReplaceCallRecords mirrors the snapshot into the calls_for_service table
// using a "clear and load" strategy inside a single transaction: the table is
// emptied and repopulated wholesale, matching the snapshot's replace-on-write
// lifecycle.
func ReplaceCallRecords(records []models.CallRecord) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for call records: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(createCallsTableSQL); err != nil {
		return fmt.Errorf("failed to ensure calls_for_service table: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM calls_for_service"); err != nil {
		return fmt.Errorf("failed to clear calls_for_service: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO calls_for_service (
			incident_number, primary_date, year, month, day_of_week, hour,
			call_type_code, call_type_text, area_occ, source_dataset, source_year
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare call record insert statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(
			rec.IncidentNumber, rec.PrimaryDate, rec.Year, rec.Month, rec.DayOfWeek, rec.Hour,
			rec.CallTypeCode, rec.CallTypeText, rec.AreaOcc, rec.SourceDataset, rec.SourceYear,
		)
		if err != nil {
			return fmt.Errorf("failed to insert call record '%s': %w", rec.IncidentNumber, err)
		}
	}

	for _, indexSQL := range callsIndexSQL {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit call records transaction: %w", err)
	}

	log.Printf("Database: Replaced calls_for_service with %d records\n", len(records))
	return nil
}

// CountCallRecords returns the number of rows currently mirrored.
func CountCallRecords() (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}

	var count int64
	if err := DB.QueryRow("SELECT COUNT(*) FROM calls_for_service").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count call records: %w", err)
	}
	return count, nil
}
