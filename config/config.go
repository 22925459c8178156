// config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type PortalConfig struct {
	Domain            string `yaml:"domain"`      // e.g., "data.lacity.org"
	CatalogURL        string `yaml:"catalog_url"` // Socrata discovery API
	PageSize          int    `yaml:"page_size"`
	RequestTimeoutStr string `yaml:"request_timeout"`
	PageDelayStr      string `yaml:"page_delay"`

	// Parsed durations and the optional app token from the environment.
	RequestTimeout time.Duration `yaml:"-"`
	PageDelay      time.Duration `yaml:"-"`
	AppToken       string        `yaml:"-"`
}

// DatasetConfig describes one source-year partition of the upstream data.
// The dataset with the greatest source_year is the one re-fetched on update.
type DatasetConfig struct {
	Name       string `yaml:"name"`
	Endpoint   string `yaml:"endpoint"` // Socrata resource id, e.g. "xjgu-z4ju"
	SourceYear int    `yaml:"source_year"`
}

type StorageConfig struct {
	ParquetPath string `yaml:"parquet_path"`
	SQLitePath  string `yaml:"sqlite_path"`
	BackupDir   string `yaml:"backup_dir"`
	ReportDir   string `yaml:"report_dir"`
}

type FreshnessConfig struct {
	UpdateWindowStr string        `yaml:"update_window"`
	UpdateWindow    time.Duration `yaml:"-"` // Parsed duration
}

type Config struct {
	Portal    PortalConfig    `yaml:"portal"`
	Datasets  []DatasetConfig `yaml:"datasets"`
	Storage   StorageConfig   `yaml:"storage"`
	Freshness FreshnessConfig `yaml:"freshness"`
}

var AppConfig Config

// LoadConfig reads configuration from file, overlaying secrets from the
// environment (a local .env is honored when present).
func LoadConfig(configPath string) error {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	if configPath == "" {
		potentialPaths := []string{
			"config.yaml",
			"config/config.yaml",
			"../config.yaml",
		}
		for _, p := range potentialPaths {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
		if configPath == "" {
			return fmt.Errorf("config.yaml not found in standard locations")
		}
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(file, &AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyDefaults(&AppConfig); err != nil {
		return err
	}

	AppConfig.Portal.AppToken = os.Getenv("SOCRATA_APP_TOKEN")

	// Make sure the data directories exist before anything tries to write.
	for _, dir := range []string{
		filepath.Dir(AppConfig.Storage.ParquetPath),
		filepath.Dir(AppConfig.Storage.SQLitePath),
		AppConfig.Storage.BackupDir,
		AppConfig.Storage.ReportDir,
	} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	return nil
}

func applyDefaults(cfg *Config) error {
	var err error

	if cfg.Portal.PageSize <= 0 {
		cfg.Portal.PageSize = 50000
	}
	cfg.Portal.RequestTimeout, err = parseDurationOr(cfg.Portal.RequestTimeoutStr, 2*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to parse portal request_timeout: %w", err)
	}
	cfg.Portal.PageDelay, err = parseDurationOr(cfg.Portal.PageDelayStr, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to parse portal page_delay: %w", err)
	}
	cfg.Freshness.UpdateWindow, err = parseDurationOr(cfg.Freshness.UpdateWindowStr, 168*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to parse freshness update_window: %w", err)
	}

	if cfg.Storage.ParquetPath == "" {
		cfg.Storage.ParquetPath = "data/lapd_calls_for_service.parquet"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/lapd_calls_for_service.db"
	}
	if cfg.Storage.BackupDir == "" {
		cfg.Storage.BackupDir = "backups"
	}
	if cfg.Storage.ReportDir == "" {
		cfg.Storage.ReportDir = "analysis"
	}
	return nil
}

func parseDurationOr(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

// DatasetsByYear returns the configured datasets ordered by source year,
// oldest first.
func DatasetsByYear() []DatasetConfig {
	datasets := make([]DatasetConfig, len(AppConfig.Datasets))
	copy(datasets, AppConfig.Datasets)
	sort.Slice(datasets, func(i, j int) bool {
		return datasets[i].SourceYear < datasets[j].SourceYear
	})
	return datasets
}

// CurrentDataset returns the dataset with the greatest source year, i.e. the
// one the upstream authority still revises and the only one re-fetched on
// incremental updates.
func CurrentDataset() (DatasetConfig, bool) {
	datasets := DatasetsByYear()
	if len(datasets) == 0 {
		return DatasetConfig{}, false
	}
	return datasets[len(datasets)-1], true
}
