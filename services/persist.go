// services/persist.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/citydesk/lapdcalls/config"
	"github.com/citydesk/lapdcalls/database"
	"github.com/citydesk/lapdcalls/models"
	"github.com/citydesk/lapdcalls/snapshot"
)

// persistSnapshot writes the merged snapshot to both persisted
// representations. Backups strictly precede every overwrite, so a failed or
// bad write can be manually rolled back from the timestamped copies. A
// missing prior file simply means there is nothing to back up (first run).
func persistSnapshot(store *snapshot.Store, records []models.CallRecord, run models.IngestRun, now time.Time) error {
	if _, err := store.Backup(now); err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			return fmt.Errorf("failed to back up snapshot file: %w", err)
		}
		log.Println("Service: No prior snapshot file to back up.")
	}

	sqlitePath := config.AppConfig.Storage.SQLitePath
	if _, err := database.BackupDatabaseFile(sqlitePath, config.AppConfig.Storage.BackupDir, now); err != nil {
		if !errors.Is(err, database.ErrNoDatabaseFile) {
			return fmt.Errorf("failed to back up database file: %w", err)
		}
		log.Println("Service: No prior database file to back up.")
	}

	if err := store.Save(records); err != nil {
		return err
	}

	if database.DB == nil {
		if err := database.InitDB(sqlitePath); err != nil {
			return err
		}
	}
	if err := database.ReplaceCallRecords(records); err != nil {
		return err
	}

	finished := time.Now()
	run.FinishedAt = &finished
	run.RecordsTotal = len(records)
	run.Status = models.RunStatusOK
	if err := database.LogIngestRun(run); err != nil {
		// The snapshot itself is already durable; a failed audit row is
		// worth a diagnostic but not a failed run.
		log.Printf("ERROR Service: Failed to log ingest run: %v\n", err)
	}
	return nil
}
