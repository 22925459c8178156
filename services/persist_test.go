package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citydesk/lapdcalls/config"
	"github.com/citydesk/lapdcalls/database"
	"github.com/citydesk/lapdcalls/models"
	"github.com/citydesk/lapdcalls/snapshot"
)

func setupStorage(t *testing.T) *snapshot.Store {
	t.Helper()
	dir := t.TempDir()

	config.AppConfig.Storage = config.StorageConfig{
		ParquetPath: filepath.Join(dir, "calls.parquet"),
		SQLitePath:  filepath.Join(dir, "calls.db"),
		BackupDir:   filepath.Join(dir, "backups"),
		ReportDir:   filepath.Join(dir, "reports"),
	}
	t.Cleanup(database.CloseDB)

	return snapshot.NewStore(config.AppConfig.Storage.ParquetPath, config.AppConfig.Storage.BackupDir)
}

func backupEntries(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(config.AppConfig.Storage.BackupDir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

func TestPersistSnapshot_FirstRunCreatesNoBackup(t *testing.T) {
	store := setupStorage(t)

	now := time.Date(2024, 7, 10, 6, 0, 0, 0, time.UTC)
	run := models.NewIngestRun(models.RunKindBuild, now)
	records := []models.CallRecord{rec("1", 2024)}

	require.NoError(t, persistSnapshot(store, records, run, now))

	assert.Empty(t, backupEntries(t), "first run has no prior state to back up")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)

	count, err := database.CountCallRecords()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	lastRun, err := database.GetLastSuccessfulRun(models.RunKindBuild)
	require.NoError(t, err)
	require.NotNil(t, lastRun)
	assert.Equal(t, run.ID, lastRun.ID)
	assert.Equal(t, 1, lastRun.RecordsTotal)
}

func TestPersistSnapshot_BackupPrecedesOverwrite(t *testing.T) {
	store := setupStorage(t)

	first := time.Date(2024, 7, 10, 6, 0, 0, 0, time.UTC)
	require.NoError(t, persistSnapshot(store,
		[]models.CallRecord{rec("1", 2023)},
		models.NewIngestRun(models.RunKindBuild, first), first))

	priorParquet, err := os.ReadFile(config.AppConfig.Storage.ParquetPath)
	require.NoError(t, err)

	second := first.Add(7 * 24 * time.Hour)
	require.NoError(t, persistSnapshot(store,
		[]models.CallRecord{rec("1", 2024), rec("2", 2024)},
		models.NewIngestRun(models.RunKindUpdate, second), second))

	entries := backupEntries(t)
	require.Len(t, entries, 2, "expected a parquet and a sqlite backup")

	backupParquet, err := os.ReadFile(filepath.Join(
		config.AppConfig.Storage.BackupDir, "lapd_calls_backup_20240717_060000.parquet"))
	require.NoError(t, err)
	assert.Equal(t, priorParquet, backupParquet,
		"backup must hold the pre-update snapshot content")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 2)

	count, err := database.CountCallRecords()
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
