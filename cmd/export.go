package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/internal/outwriter"
	"github.com/statlake/covidload/internal/warehouse"
	"github.com/statlake/covidload/schema"
)

// exportCmd exports processed metrics from the warehouse.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export warehouse metrics to text, csv, json or parquet.",
	Long: `Read processed daily metrics back from the warehouse and write them in
the selected output format. Parquet output requires --output-file.

Examples:
  # Full processed dataset as CSV
  covidload export --output csv --output-file processed.csv

  # One state since a date, as a table
  covidload export --state California --since 2021-01-01

  # Parquet for downstream analytics
  covidload export --output parquet --output-file metrics.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		var since time.Time
		if s := viper.GetString("since"); s != "" {
			var err error
			since, err = time.Parse(schema.DateFormat, s)
			if err != nil {
				contract.LogFatal("Invalid --since date", err)
			}
		}

		ctx, cancel := context.WithTimeout(rootCtx, cfg.Timeout)
		defer cancel()

		store, err := warehouse.NewStore(ctx, cfg.WarehouseBackend, cfg.WarehouseDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open warehouse", err)
		}
		defer func() { _ = store.Close() }()

		metrics, err := store.ReadMetrics(ctx, viper.GetString("state"), since)
		if err != nil {
			contract.LogFatal("Cannot read warehouse metrics", err)
		}
		if err := outwriter.PrintDailyMetrics(metrics, cfg); err != nil {
			contract.LogFatal("Cannot write metrics export", err)
		}
	},
}
