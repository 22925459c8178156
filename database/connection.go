// database/connection.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var DB *sql.DB

// ErrNoDatabaseFile is returned by BackupDatabaseFile when no database file
// exists yet, i.e. there is nothing to back up.
var ErrNoDatabaseFile = errors.New("database file not found")

// InitDB opens (creating if necessary) the SQLite mirror of the snapshot.
func InitDB(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	var err error
	DB, err = sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// SQLite allows a single writer; keep the pool at one connection so the
	// clear-and-load transaction never contends with itself.
	DB.SetMaxOpenConns(1)

	if err := DB.Ping(); err != nil {
		DB.Close()
		DB = nil
		return fmt.Errorf("failed to ping database %s: %w", path, err)
	}

	log.Printf("Database: Connected to %s\n", path)
	return nil
}

// CloseDB closes the database. Typically called on shutdown.
func CloseDB() {
	if DB != nil {
		DB.Close()
		DB = nil
		log.Println("Database: Connection closed.")
	}
}

// BackupDatabaseFile copies the mirror database file into backupDir under a
// timestamped name, returning the backup path. Must be called before a
// clear-and-load so a bad write can be manually rolled back.
func BackupDatabaseFile(path, backupDir string, now time.Time) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", ErrNoDatabaseFile
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %s: %w", backupDir, err)
	}

	backupPath := filepath.Join(backupDir,
		fmt.Sprintf("lapd_calls_backup_%s.db", now.Format("20060102_150405")))

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open database file for backup: %w", err)
	}
	defer in.Close()

	out, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to create database backup %s: %w", backupPath, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to copy database to %s: %w", backupPath, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize database backup %s: %w", backupPath, err)
	}

	log.Printf("Database: Backed up %s to %s\n", path, backupPath)
	return backupPath, nil
}
