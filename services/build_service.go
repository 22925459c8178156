// services/build_service.go
package services

import (
	"fmt"
	"log"
	"time"

	"github.com/citydesk/lapdcalls/config"
	"github.com/citydesk/lapdcalls/models"
	"github.com/citydesk/lapdcalls/snapshot"
	"github.com/citydesk/lapdcalls/socrata"
)

// RunBuild performs the full historical build: every configured dataset
// partition is fetched, normalized, and folded into the snapshot oldest year
// first, so the unique-incident-number invariant holds on the very first
// build and later years win any identifier collisions. A dataset that fails
// to fetch is logged and skipped rather than failing the whole build.
func RunBuild(now time.Time) error {
	datasets := config.DatasetsByYear()
	if len(datasets) == 0 {
		return fmt.Errorf("no datasets configured")
	}

	log.Printf("Service: Starting full build across %d datasets...\n", len(datasets))
	run := models.NewIngestRun(models.RunKindBuild, now)

	var combined []models.CallRecord
	fetched := 0
	for _, ds := range datasets {
		rawRows, err := socrata.FetchDataset(ds)
		if err != nil {
			log.Printf("ERROR Service: Failed to fetch dataset %q: %v\n", ds.Name, err)
			continue
		}

		records := socrata.Normalize(rawRows, ds)
		if len(records) == 0 {
			log.Printf("WARN Service: Dataset %q yielded no usable records.\n", ds.Name)
			continue
		}

		fetched += len(records)
		combined = MergeSnapshots(combined, records)
		log.Printf("Service: Folded in %q: %d records, %d total after dedup.\n",
			ds.Name, len(records), len(combined))
	}

	if len(combined) == 0 {
		return fmt.Errorf("no data was successfully fetched from any dataset")
	}
	run.RecordsFetched = fetched

	first, last := dateRange(combined)
	log.Printf("Service: Build collected %d records spanning %s to %s.\n",
		len(combined), first.Format("2006-01-02"), last.Format("2006-01-02"))

	store := snapshot.NewStore(config.AppConfig.Storage.ParquetPath, config.AppConfig.Storage.BackupDir)
	if err := persistSnapshot(store, combined, run, now); err != nil {
		return fmt.Errorf("failed to persist built snapshot: %w", err)
	}

	log.Printf("Service: Build complete. Total records: %d\n", len(combined))
	return nil
}

func dateRange(records []models.CallRecord) (first, last time.Time) {
	for _, rec := range records {
		if first.IsZero() || rec.PrimaryDate.Before(first) {
			first = rec.PrimaryDate
		}
		if last.IsZero() || rec.PrimaryDate.After(last) {
			last = rec.PrimaryDate
		}
	}
	return first, last
}
