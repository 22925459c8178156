// database/runs_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/citydesk/lapdcalls/models"
)

const createRunsTableSQL = `
	CREATE TABLE IF NOT EXISTS ingest_runs (
		id              TEXT PRIMARY KEY,
		kind            TEXT NOT NULL,
		started_at      TIMESTAMP NOT NULL,
		finished_at     TIMESTAMP,
		records_fetched INTEGER,
		records_total   INTEGER,
		status          TEXT NOT NULL,
		message         TEXT
	)`

// LogIngestRun appends one audit row describing a build or update pass.
func LogIngestRun(run models.IngestRun) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	if _, err := DB.Exec(createRunsTableSQL); err != nil {
		return fmt.Errorf("failed to ensure ingest_runs table: %w", err)
	}

	var finished sql.NullTime
	if run.FinishedAt != nil {
		finished = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}

	_, err := DB.Exec(`
		INSERT INTO ingest_runs (
			id, kind, started_at, finished_at,
			records_fetched, records_total, status, message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.Kind, run.StartedAt, finished,
		run.RecordsFetched, run.RecordsTotal, run.Status, run.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to log ingest run %s: %w", run.ID, err)
	}

	log.Printf("Database: Logged %s run %s (%s, %d records)\n", run.Kind, run.ID, run.Status, run.RecordsTotal)
	return nil
}

// GetLastSuccessfulRun returns the most recent successful run of the given
// kind, or nil when none exists yet.
func GetLastSuccessfulRun(kind string) (*models.IngestRun, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	if _, err := DB.Exec(createRunsTableSQL); err != nil {
		return nil, fmt.Errorf("failed to ensure ingest_runs table: %w", err)
	}

	var run models.IngestRun
	var finished sql.NullTime
	err := DB.QueryRow(`
		SELECT id, kind, started_at, finished_at,
		       records_fetched, records_total, status, message
		FROM ingest_runs
		WHERE kind = ? AND status = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, kind, models.RunStatusOK).Scan(
		&run.ID, &run.Kind, &run.StartedAt, &finished,
		&run.RecordsFetched, &run.RecordsTotal, &run.Status, &run.Message,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query last successful %s run: %w", kind, err)
	}

	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}
