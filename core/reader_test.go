package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statlake/covidload/schema"
)

func TestParseObservations_UpstreamHeader(t *testing.T) {
	csvData := strings.Join([]string{
		"date,state,fips,cases,deaths",
		"2021-03-01,California,06,100,5",
		"2021-03-02,California,06,150,6",
		"2021-03-01,Washington,53,40,1",
	}, "\n")

	observations, stats, err := ParseObservations(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, 0, stats.MalformedRows)
	require.Len(t, observations, 3)

	first := observations[0]
	assert.Equal(t, "California", first.State)
	assert.Equal(t, 6, first.Fips)
	assert.Equal(t, 100, first.CumulativeCases)
	assert.Equal(t, 5, first.CumulativeDeaths)
	assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), first.Date)
}

func TestParseObservations_WarehouseHeaderAliases(t *testing.T) {
	csvData := strings.Join([]string{
		"date,state,cumulative_cases,cumulative_deaths",
		"2021-03-01,Oregon,10,0",
	}, "\n")

	observations, stats, err := ParseObservations(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalRows)
	require.Len(t, observations, 1)
	assert.Equal(t, "Oregon", observations[0].State)
	assert.Equal(t, 10, observations[0].CumulativeCases)
	assert.Zero(t, observations[0].Fips, "fips column is optional")
}

func TestParseObservations_MalformedRowsSkippedAndCounted(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{name: "bad date", row: "03/01/2021,California,06,100,5"},
		{name: "empty state", row: "2021-03-01,,06,100,5"},
		{name: "non-numeric cases", row: "2021-03-01,California,06,abc,5"},
		{name: "negative cumulative", row: "2021-03-01,California,06,-1,5"},
		{name: "too few fields", row: "2021-03-01,California"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csvData := strings.Join([]string{
				"date,state,fips,cases,deaths",
				tt.row,
				"2021-03-01,Washington,53,40,1",
			}, "\n")

			observations, stats, err := ParseObservations(strings.NewReader(csvData))
			require.NoError(t, err, "malformed rows must never fail the read")

			assert.Equal(t, 2, stats.TotalRows)
			assert.Equal(t, 1, stats.MalformedRows)
			require.Len(t, observations, 1)
			assert.Equal(t, "Washington", observations[0].State)
		})
	}
}

func TestParseObservations_QuotedRowWithEmbeddedComma(t *testing.T) {
	csvData := strings.Join([]string{
		"date,state,fips,cases,deaths",
		`2021-03-01,"District of Columbia",11,25,2`,
	}, "\n")

	observations, stats, err := ParseObservations(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalRows)
	assert.Equal(t, 0, stats.MalformedRows)
	require.Len(t, observations, 1)
	assert.Equal(t, "District of Columbia", observations[0].State)
}

func TestParseObservations_EmptyStream(t *testing.T) {
	_, _, err := ParseObservations(strings.NewReader(""))

	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
}

func TestParseObservations_HeaderMissingColumns(t *testing.T) {
	csvData := strings.Join([]string{
		"date,region,total",
		"2021-03-01,California,100",
	}, "\n")

	_, _, err := ParseObservations(strings.NewReader(csvData))

	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
}

func TestParseObservations_HeaderOnly(t *testing.T) {
	observations, stats, err := ParseObservations(strings.NewReader("date,state,fips,cases,deaths\n"))

	require.NoError(t, err)
	assert.Empty(t, observations)
	assert.Zero(t, stats.TotalRows)
}

func TestMapColumns_CaseInsensitive(t *testing.T) {
	cols, err := mapColumns([]string{"Date", " STATE ", "FIPS", "Cases", "Deaths"})

	require.NoError(t, err)
	assert.Equal(t, 0, cols.date)
	assert.Equal(t, 1, cols.state)
	assert.Equal(t, 2, cols.fips)
	assert.Equal(t, 3, cols.cases)
	assert.Equal(t, 4, cols.deaths)
}

func TestParseCumulative(t *testing.T) {
	v, err := parseCumulative(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = parseCumulative("-3")
	assert.Error(t, err, "running totals cannot go negative")

	_, err = parseCumulative("4.5")
	assert.Error(t, err)
}
