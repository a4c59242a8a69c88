package outwriter

import (
	"fmt"
	"io"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/schema"
)

// PrintWarehouseStatus outputs the warehouse status report.
func PrintWarehouseStatus(status schema.WarehouseStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	}

	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		fmt.Fprintf(w, "Warehouse backend: %s\n", status.Backend)
		fmt.Fprintf(w, "Total rows:        %d\n", status.TotalRows)
		if status.TotalRows == 0 {
			return nil
		}
		fmt.Fprintf(w, "States covered:    %d\n", status.StateCount)
		fmt.Fprintf(w, "Date range:        %s to %s\n",
			status.OldestDate.Format(schema.DateFormat), status.LatestDate.Format(schema.DateFormat))
		return nil
	}, "Wrote status")
}
