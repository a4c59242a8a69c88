package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/internal/outwriter"
	"github.com/statlake/covidload/internal/warehouse"
)

// statusCmd reports warehouse row counts and date coverage.
var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show warehouse row counts and date coverage.",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := context.WithTimeout(rootCtx, cfg.Timeout)
		defer cancel()

		store, err := warehouse.NewStore(ctx, cfg.WarehouseBackend, cfg.WarehouseDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open warehouse", err)
		}
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus(ctx)
		if err != nil {
			contract.LogFatal("Cannot read warehouse status", err)
		}
		if err := outwriter.PrintWarehouseStatus(status, cfg); err != nil {
			contract.LogFatal("Cannot print warehouse status", err)
		}
	},
}
