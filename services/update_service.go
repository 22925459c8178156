// services/update_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/citydesk/lapdcalls/config"
	"github.com/citydesk/lapdcalls/models"
	"github.com/citydesk/lapdcalls/snapshot"
	"github.com/citydesk/lapdcalls/socrata"
)

// RunUpdate refreshes the current-year partition and merges it into the
// persisted snapshot. Unless forced, the run is skipped when the upstream
// dataset has not been revised within the configured freshness window.
// Historical partitions are never re-fetched.
func RunUpdate(force bool, now time.Time) error {
	current, ok := config.CurrentDataset()
	if !ok {
		return fmt.Errorf("no datasets configured")
	}

	if !force && !updateIsFresh(current, now) {
		log.Println("Service: No recent upstream update found. Use --force to update anyway.")
		return nil
	}

	run := models.NewIngestRun(models.RunKindUpdate, now)

	rawRows, err := socrata.FetchDataset(current)
	if err != nil {
		return fmt.Errorf("failed to fetch current dataset %q: %w", current.Name, err)
	}

	partition := socrata.Normalize(rawRows, current)
	if len(partition) == 0 {
		return fmt.Errorf("no usable records fetched for %q; aborting update", current.Name)
	}
	run.RecordsFetched = len(partition)

	store := snapshot.NewStore(config.AppConfig.Storage.ParquetPath, config.AppConfig.Storage.BackupDir)

	existing, err := store.Load()
	if err != nil {
		// A fresh build from the current partition is always a valid
		// fallback; a missing or unreadable snapshot is recoverable.
		if errors.Is(err, snapshot.ErrNotFound) {
			log.Println("WARN Service: No existing snapshot found; building from current partition only.")
		} else {
			log.Printf("WARN Service: Existing snapshot is unreadable (%v); treating it as empty.\n", err)
		}
		existing = nil
	} else {
		log.Printf("Service: Loaded %d existing records from snapshot.\n", len(existing))
	}

	// The current-year partition replaces its prior rows wholesale, so rows
	// the upstream authority has since deleted do not linger in the history.
	history := filterOutSourceYear(existing, current.SourceYear)
	if removed := len(existing) - len(history); removed > 0 {
		log.Printf("Service: Replacing %d prior records from source year %d.\n", removed, current.SourceYear)
	}

	merged := MergeSnapshots(history, partition)
	log.Printf("Service: Merged %d historical and %d current records into %d total.\n",
		len(history), len(partition), len(merged))

	if err := persistSnapshot(store, merged, run, now); err != nil {
		return fmt.Errorf("failed to persist updated snapshot: %w", err)
	}

	log.Printf("Service: Update complete. Total records: %d\n", len(merged))
	return nil
}

// updateIsFresh reports whether the upstream dataset was revised recently
// enough to justify a run. Failure to even determine freshness counts as
// "not fresh"; a forced run bypasses this gate entirely.
func updateIsFresh(ds config.DatasetConfig, now time.Time) bool {
	updatedAt, err := socrata.CheckDatasetFreshness(ds.Endpoint)
	if err != nil {
		log.Printf("WARN Service: Could not check upstream freshness for %q: %v\n", ds.Name, err)
		return false
	}

	age := now.Sub(updatedAt)
	window := config.AppConfig.Freshness.UpdateWindow
	log.Printf("Service: Upstream dataset %q last updated %s ago (window %s).\n",
		ds.Name, age.Round(time.Hour), window)
	return age <= window
}

func filterOutSourceYear(records []models.CallRecord, sourceYear int) []models.CallRecord {
	filtered := make([]models.CallRecord, 0, len(records))
	for _, rec := range records {
		if rec.SourceYear == sourceYear {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}
