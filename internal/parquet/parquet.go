// Package parquet exports warehouse metrics to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/statlake/covidload/schema"
)

// DailyMetricRecord maps one covid_state_metrics row to a Parquet record.
type DailyMetricRecord struct {
	// Date is the calendar date of the delta (stored as TIMESTAMP)
	Date time.Time `parquet:"date,snappy"`

	// State is the state or territory name as reported upstream
	State string `parquet:"state,snappy"`

	// Fips is the state FIPS code (0 when the feed omitted it)
	Fips int32 `parquet:"fips,snappy"`

	// NewCases is the day-over-day case delta; negative on source corrections
	NewCases int32 `parquet:"new_cases,snappy"`

	// NewDeaths is the day-over-day death delta; negative on source corrections
	NewDeaths int32 `parquet:"new_deaths,snappy"`

	// CumulativeCases is the running case total as of Date
	CumulativeCases int32 `parquet:"cumulative_cases,snappy"`

	// CumulativeDeaths is the running death total as of Date
	CumulativeDeaths int32 `parquet:"cumulative_deaths,snappy"`

	// Status is accepted or accepted-corrected
	Status string `parquet:"status,snappy"`
}

// WriteDailyMetricsParquet writes metrics to a Parquet file.
func WriteDailyMetricsParquet(metrics []schema.DailyMetric, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is inferred from the DailyMetricRecord struct tags
	writer := parquet.NewGenericWriter[DailyMetricRecord](file)
	defer func() { _ = writer.Close() }()

	records := make([]DailyMetricRecord, 0, len(metrics))
	for _, m := range metrics {
		records = append(records, DailyMetricRecord{
			Date:             m.Date,
			State:            m.State,
			Fips:             int32(m.Fips),
			NewCases:         int32(m.NewCases),
			NewDeaths:        int32(m.NewDeaths),
			CumulativeCases:  int32(m.CumulativeCases),
			CumulativeDeaths: int32(m.CumulativeDeaths),
			Status:           string(m.Status),
		})
	}

	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}
