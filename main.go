// main.go
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/citydesk/lapdcalls/analysis"
	"github.com/citydesk/lapdcalls/config"
	"github.com/citydesk/lapdcalls/database"
	"github.com/citydesk/lapdcalls/services"
	"github.com/citydesk/lapdcalls/snapshot"
)

var (
	configPath  string
	forceUpdate bool
)

var rootCmd = &cobra.Command{
	Use:   "lapdcalls",
	Short: "Fetch, merge, and persist LAPD calls-for-service data",
	Long: "lapdcalls pulls LAPD calls-for-service records from the LA open-data portal,\n" +
		"normalizes them into a single deduplicated snapshot, and persists the snapshot\n" +
		"as a parquet file mirrored into a SQLite table.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log.Printf("Configuration loaded. Portal: %s, datasets: %d\n",
			config.AppConfig.Portal.Domain, len(config.AppConfig.Datasets))
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the full historical build across all configured datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return services.RunBuild(time.Now())
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch the current-year dataset and merge it into the snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return services.RunUpdate(forceUpdate, time.Now())
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the fireworks call aggregates as CSV files",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := snapshot.NewStore(config.AppConfig.Storage.ParquetPath, config.AppConfig.Storage.BackupDir)
		records, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to load snapshot (run 'lapdcalls build' first): %w", err)
		}

		report := analysis.BuildFireworksReport(records)
		if report.TotalCalls > 0 {
			log.Printf("Analysis: %d fireworks-related calls out of %d total (%.3f%%)\n",
				report.FireworksCalls, report.TotalCalls,
				float64(report.FireworksCalls)/float64(report.TotalCalls)*100)
		}

		return report.WriteCSV(config.AppConfig.Storage.ReportDir)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	updateCmd.Flags().BoolVar(&forceUpdate, "force", false, "bypass the upstream freshness check")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	err := rootCmd.Execute()
	database.CloseDB()
	if err != nil {
		log.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}
