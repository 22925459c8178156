// snapshot/store.go
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/citydesk/lapdcalls/models"
	"github.com/parquet-go/parquet-go"
)

// ErrNotFound is returned by Load and Backup when no snapshot file exists on
// disk yet. Callers treat it as "first run", not as a failure.
var ErrNotFound = errors.New("snapshot file not found")

const backupTimestampLayout = "20060102_150405"

// Store persists the full call-record snapshot as a single parquet file and
// keeps timestamped copies of prior states under BackupDir.
type Store struct {
	ParquetPath string
	BackupDir   string
}

func NewStore(parquetPath, backupDir string) *Store {
	return &Store{ParquetPath: parquetPath, BackupDir: backupDir}
}

// Load reads the entire snapshot. A missing file yields ErrNotFound so the
// caller can fall back to an empty history.
func (s *Store) Load() ([]models.CallRecord, error) {
	if _, err := os.Stat(s.ParquetPath); os.IsNotExist(err) {
		return nil, ErrNotFound
	}

	records, err := parquet.ReadFile[models.CallRecord](s.ParquetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.ParquetPath, err)
	}
	return records, nil
}

// Save rewrites the snapshot file wholesale. The write is only durable once
// the full file is written; callers must take a backup first.
func (s *Store) Save(records []models.CallRecord) error {
	if dir := filepath.Dir(s.ParquetPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
		}
	}

	if err := parquet.WriteFile(s.ParquetPath, records); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", s.ParquetPath, err)
	}

	log.Printf("Snapshot: Saved %d records to %s\n", len(records), s.ParquetPath)
	return nil
}

// Backup copies the current snapshot file into BackupDir under a timestamped
// name and returns the backup path. ErrNotFound means there was nothing to
// back up (first run); old backups are never pruned.
func (s *Store) Backup(now time.Time) (string, error) {
	if _, err := os.Stat(s.ParquetPath); os.IsNotExist(err) {
		return "", ErrNotFound
	}

	if err := os.MkdirAll(s.BackupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %s: %w", s.BackupDir, err)
	}

	backupPath := filepath.Join(s.BackupDir,
		fmt.Sprintf("lapd_calls_backup_%s.parquet", now.Format(backupTimestampLayout)))
	if err := copyFile(s.ParquetPath, backupPath); err != nil {
		return "", fmt.Errorf("failed to back up snapshot to %s: %w", backupPath, err)
	}

	log.Printf("Snapshot: Backed up %s to %s\n", s.ParquetPath, backupPath)
	return backupPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
