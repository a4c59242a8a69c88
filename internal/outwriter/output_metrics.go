package outwriter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/internal/parquet"
	"github.com/statlake/covidload/schema"
)

// PrintDailyMetrics outputs warehouse metrics, dispatching on the configured
// output format. Parquet requires an output file.
func PrintDailyMetrics(metrics []schema.DailyMetric, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, metricsRenderModel(metrics))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsCSV(w, metrics)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WriteDailyMetricsParquet(metrics, cfg.OutputFile); err != nil {
			return err
		}
		fmt.Printf("💾 Wrote %d metrics to %s\n", len(metrics), cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsTable(w, metrics, cfg)
		}, "Wrote table")
	}
}

// metricRow is the JSON shape for a single exported metric.
type metricRow struct {
	Date             string `json:"date"`
	State            string `json:"state"`
	Fips             int    `json:"fips"`
	NewCases         int    `json:"new_cases"`
	NewDeaths        int    `json:"new_deaths"`
	CumulativeCases  int    `json:"cumulative_cases"`
	CumulativeDeaths int    `json:"cumulative_deaths"`
	Status           string `json:"status"`
}

func metricsRenderModel(metrics []schema.DailyMetric) []metricRow {
	rows := make([]metricRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, metricRow{
			Date:             m.Date.Format(schema.DateFormat),
			State:            m.State,
			Fips:             m.Fips,
			NewCases:         m.NewCases,
			NewDeaths:        m.NewDeaths,
			CumulativeCases:  m.CumulativeCases,
			CumulativeDeaths: m.CumulativeDeaths,
			Status:           string(m.Status),
		})
	}
	return rows
}

// MetricsCSVBytes renders metrics in the processed-snapshot CSV shape,
// used when archiving the transformed dataset to object storage.
func MetricsCSVBytes(metrics []schema.DailyMetric) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeMetricsCSV(&buf, metrics); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeMetricsCSV writes metrics in the processed-snapshot CSV shape.
func writeMetricsCSV(w io.Writer, metrics []schema.DailyMetric) error {
	header := []string{"date", "state", "fips", "new_cases", "new_deaths", "cumulative_cases", "cumulative_deaths", "status"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range metrics {
			record := []string{
				m.Date.Format(schema.DateFormat),
				m.State,
				strconv.Itoa(m.Fips),
				strconv.Itoa(m.NewCases),
				strconv.Itoa(m.NewDeaths),
				strconv.Itoa(m.CumulativeCases),
				strconv.Itoa(m.CumulativeDeaths),
				string(m.Status),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeMetricsTable writes the human-readable metrics listing.
func writeMetricsTable(w io.Writer, metrics []schema.DailyMetric, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "State", "New Cases", "New Deaths", "Cum Cases", "Cum Deaths", "Status"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	stateWidth := getMaxStateWidth()
	var data [][]string
	for _, m := range metrics {
		status := string(m.Status)
		if cfg.UseColors {
			status = contract.GetColorMetricLabel(m.Status)
		}
		data = append(data, []string{
			m.Date.Format(schema.DateFormat),
			truncateState(m.State, stateWidth),
			strconv.Itoa(m.NewCases),
			strconv.Itoa(m.NewDeaths),
			strconv.Itoa(m.CumulativeCases),
			strconv.Itoa(m.CumulativeDeaths),
			status,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d metric rows\n", len(metrics))
	return err
}
