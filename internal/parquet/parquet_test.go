package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statlake/covidload/schema"
)

func TestDailyMetricRecordStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	pqSchema := parquet.SchemaOf(new(DailyMetricRecord))
	require.NotNil(t, pqSchema)

	expectedColumns := []string{
		"date",
		"state",
		"fips",
		"new_cases",
		"new_deaths",
		"cumulative_cases",
		"cumulative_deaths",
		"status",
	}

	for _, colName := range expectedColumns {
		col, ok := pqSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestWriteDailyMetricsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "metrics.parquet")

	metrics := []schema.DailyMetric{
		{
			Date:             time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC),
			State:            "California",
			Fips:             6,
			NewCases:         50,
			NewDeaths:        1,
			CumulativeCases:  150,
			CumulativeDeaths: 6,
			Status:           schema.AcceptedStatus,
		},
		{
			Date:             time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC),
			State:            "California",
			Fips:             6,
			NewCases:         -10,
			NewDeaths:        0,
			CumulativeCases:  140,
			CumulativeDeaths: 6,
			Status:           schema.CorrectedStatus,
		},
	}

	err := WriteDailyMetricsParquet(metrics, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[DailyMetricRecord](file)
	defer reader.Close()

	readData := make([]DailyMetricRecord, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	require.Equal(t, len(metrics), n, "Should read all records")

	for i := range metrics {
		assert.Equal(t, metrics[i].State, readData[i].State)
		assert.Equal(t, int32(metrics[i].NewCases), readData[i].NewCases)
		assert.Equal(t, int32(metrics[i].CumulativeCases), readData[i].CumulativeCases)
		assert.Equal(t, string(metrics[i].Status), readData[i].Status)
		assert.WithinDuration(t, metrics[i].Date, readData[i].Date, time.Millisecond)
	}
}

func TestWriteDailyMetricsParquet_EmptyInput(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")

	err := WriteDailyMetricsParquet(nil, outputPath)
	require.NoError(t, err)

	_, err = os.Stat(outputPath)
	assert.NoError(t, err, "even an empty export leaves a valid file")
}

func TestWriteDailyMetricsParquet_BadPath(t *testing.T) {
	err := WriteDailyMetricsParquet(nil, filepath.Join(t.TempDir(), "missing", "metrics.parquet"))
	assert.Error(t, err)
}
