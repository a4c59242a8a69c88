package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/schema"
)

// timeRounding keeps durations in run reports readable.
const timeRounding = time.Millisecond

// PrintRunSummary outputs the run summary, dispatching on the configured
// output format.
func PrintRunSummary(summary schema.RunSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, summary)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTable(w, summary, cfg)
		}, "Wrote table")
	}
}

// writeSummaryCSV writes the summary as a single CSV record.
func writeSummaryCSV(w io.Writer, summary schema.RunSummary) error {
	header := []string{
		"run_id", "as_of", "status", "total_rows", "malformed", "baseline",
		"accepted", "corrected", "rejected", "written", "failure_kind",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		record := []string{
			summary.RunID,
			summary.AsOf.Format(schema.DateFormat),
			string(summary.Status),
			strconv.Itoa(summary.TotalRows),
			strconv.Itoa(summary.MalformedCount),
			strconv.Itoa(summary.BaselineCount),
			strconv.Itoa(summary.AcceptedCount),
			strconv.Itoa(summary.CorrectedCount),
			strconv.Itoa(summary.RejectedCount),
			strconv.Itoa(summary.WrittenCount),
			summary.FailureKind,
		}
		return cw.Write(record)
	})
}

// writeSummaryTable writes the human-readable run report.
func writeSummaryTable(w io.Writer, summary schema.RunSummary, cfg *contract.Config) error {
	statusLabel := contract.GetStatusLabel(summary.Status)
	if cfg.UseColors {
		statusLabel = contract.GetColorStatusLabel(summary.Status)
	}

	fmt.Fprintf(w, "Run %s (as of %s) finished in %v: %s\n",
		summary.RunID, summary.AsOf.Format(schema.DateFormat), summary.Duration.Round(timeRounding), statusLabel)
	if summary.FailureKind != "" {
		fmt.Fprintf(w, "Failure kind: %s\n", summary.FailureKind)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Total", "Malformed", "Baseline", "Accepted", "Corrected", "Rejected", "Written"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})
	row := []string{
		strconv.Itoa(summary.TotalRows),
		strconv.Itoa(summary.MalformedCount),
		strconv.Itoa(summary.BaselineCount),
		strconv.Itoa(summary.AcceptedCount),
		strconv.Itoa(summary.CorrectedCount),
		strconv.Itoa(summary.RejectedCount),
		strconv.Itoa(summary.WrittenCount),
	}
	if err := table.Bulk([][]string{row}); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if summary.RejectedCount > 0 {
		fmt.Fprintln(w, "Rejections by reason:")
		for _, reason := range sortedReasons(summary.RejectedReasons) {
			fmt.Fprintf(w, "  %s: %d\n", reason, summary.RejectedReasons[reason])
		}
	}
	return nil
}

// sortedReasons returns reject reasons in stable alphabetical order.
func sortedReasons(reasons map[schema.RejectReason]int) []schema.RejectReason {
	keys := make([]schema.RejectReason, 0, len(reasons))
	for k := range reasons {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
