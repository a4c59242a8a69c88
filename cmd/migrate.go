package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/internal/warehouse"
)

// migrateCmd manages the warehouse schema version.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run warehouse schema migrations.",
	Long: `Apply versioned schema migrations to the warehouse.

By default migrates to the latest version. Use --target-version to pin a
specific version, or 0 to roll everything back.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		target := viper.GetInt("target-version")
		if err := warehouse.Migrate(cfg.WarehouseBackend, cfg.WarehouseDBConnect, target); err != nil {
			contract.LogFatal("Cannot run warehouse migration", err)
		}
	},
}
