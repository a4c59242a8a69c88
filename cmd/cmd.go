// Package cmd defines the command-line interface for covidload.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("source-url", contract.DefaultSourceURL, "HTTP location of the cumulative snapshot")
	rootCmd.PersistentFlags().String("as-of", "", "Logical run date in YYYY-MM-DD (defaults to today, UTC)")
	rootCmd.PersistentFlags().Float64("reject-threshold", contract.DefaultRejectThreshold, "Fraction of bad rows tolerated before the run fails")
	rootCmd.PersistentFlags().String("timeout", "", "Upper bound per external I/O call (Go duration, e.g. 90s)")
	rootCmd.PersistentFlags().String("lock-ttl", "", "Run-lock claim lifetime (Go duration)")
	rootCmd.PersistentFlags().String("warehouse-backend", string(schema.SQLiteBackend), "Warehouse backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("warehouse-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("archive-backend", string(schema.NoArchive), "Snapshot archive backend: none or local or gcs")
	rootCmd.PersistentFlags().String("archive-bucket", "", "GCS bucket for snapshot archival")
	rootCmd.PersistentFlags().String("archive-key-file", "", "Service account key path for GCS (optional)")
	rootCmd.PersistentFlags().String("archive-dir", "", "Local directory for snapshot archival")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runCmd to Viper
	runCmd.Flags().Bool("dry-run", false, "Run everything except the warehouse write and archive puts")
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		contract.LogFatal("Error binding run flags", err)
	}

	// Bind all flags of migrateCmd to Viper
	migrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(migrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding migrate flags", err)
	}

	// Bind all flags of exportCmd to Viper
	exportCmd.Flags().String("state", "", "Only export rows for this state")
	exportCmd.Flags().String("since", "", "Only export rows on or after this date (YYYY-MM-DD)")
	if err := viper.BindPFlags(exportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding export flags", err)
	}
}
