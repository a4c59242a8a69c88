package cmd

import (
	"github.com/spf13/cobra"

	"github.com/statlake/covidload/core"
	"github.com/statlake/covidload/internal/contract"
)

// runCmd executes one full transform-and-load run.
var runCmd = &cobra.Command{
	Use:   "run [csv-file]",
	Short: "Run the daily incremental transform-and-load.",
	Long: `Fetch (or read) a cumulative us-states snapshot, archive the raw bytes,
compute validated per-state daily deltas and upsert them into the
covid_state_metrics warehouse table in a single transaction.

The run tolerates isolated bad rows: malformed lines, unknown states and
inconsistent deltas are counted and reported in the run summary. It fails
as a whole only when the source is unreadable, too many rows are bad
(--reject-threshold), another run holds an overlapping date range, or the
load transaction cannot commit.

Examples:
  # Daily load from the default feed into the local sqlite warehouse
  covidload run

  # Backfill from a downloaded snapshot into PostgreSQL
  covidload run us-states.csv --warehouse-backend postgresql \
    --warehouse-db-connect "host=localhost port=5432 user=postgres dbname=covid"

  # Validate a snapshot without touching the warehouse
  covidload run us-states.csv --dry-run --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRun(rootCtx, cfg); err != nil {
			contract.LogFatal("Pipeline run failed", err)
		}
	},
}
