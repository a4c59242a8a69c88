package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/statlake/covidload/schema"
)

// columnIndexes maps the logical columns of the snapshot to their positions
// in the header row. The fips column is optional.
type columnIndexes struct {
	date   int
	state  int
	fips   int // -1 when absent
	cases  int
	deaths int
}

// ParseObservations reads a cumulative CSV snapshot and returns typed rows
// plus counts of what it saw. Rows that fail to parse are skipped and
// counted, never fatal; only an unreadable stream or unusable header fails
// with schema.ErrSourceUnavailable.
func ParseObservations(r io.Reader) ([]schema.RawObservation, schema.ReadStats, error) {
	var stats schema.ReadStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // row width is validated per record
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("%w: cannot read snapshot header: %v", schema.ErrSourceUnavailable, err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %v", schema.ErrSourceUnavailable, err)
	}

	var observations []schema.RawObservation
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			// Structurally broken row; skip it like any other malformed row.
			stats.TotalRows++
			stats.MalformedRows++
			continue
		}
		if err != nil {
			return observations, stats, fmt.Errorf("%w: reading snapshot: %v", schema.ErrSourceUnavailable, err)
		}

		stats.TotalRows++
		obs, ok := parseObservation(record, cols)
		if !ok {
			stats.MalformedRows++
			continue
		}
		observations = append(observations, obs)
	}

	return observations, stats, nil
}

// mapColumns locates the logical columns in the header. Both the upstream
// feed names (cases, deaths) and the warehouse names (cumulative_cases,
// cumulative_deaths) are accepted.
func mapColumns(header []string) (columnIndexes, error) {
	cols := columnIndexes{date: -1, state: -1, fips: -1, cases: -1, deaths: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			cols.date = i
		case "state":
			cols.state = i
		case "fips":
			cols.fips = i
		case "cases", "cumulative_cases":
			cols.cases = i
		case "deaths", "cumulative_deaths":
			cols.deaths = i
		}
	}
	if cols.date < 0 || cols.state < 0 || cols.cases < 0 || cols.deaths < 0 {
		return cols, fmt.Errorf("snapshot header missing required columns (have %v)", header)
	}
	return cols, nil
}

// parseObservation converts one CSV record into a RawObservation.
// Returns false when any required field is malformed.
func parseObservation(record []string, cols columnIndexes) (schema.RawObservation, bool) {
	var obs schema.RawObservation

	maxIdx := max(cols.date, cols.state, cols.cases, cols.deaths)
	if len(record) <= maxIdx {
		return obs, false
	}

	date, err := time.Parse(schema.DateFormat, strings.TrimSpace(record[cols.date]))
	if err != nil {
		return obs, false
	}

	state := strings.TrimSpace(record[cols.state])
	if state == "" {
		return obs, false
	}

	cases, err := parseCumulative(record[cols.cases])
	if err != nil {
		return obs, false
	}
	deaths, err := parseCumulative(record[cols.deaths])
	if err != nil {
		return obs, false
	}

	obs = schema.RawObservation{
		Date:             date,
		State:            state,
		CumulativeCases:  cases,
		CumulativeDeaths: deaths,
	}
	if cols.fips >= 0 && cols.fips < len(record) {
		// Optional column; a bad fips does not invalidate the row.
		if fips, err := strconv.Atoi(strings.TrimSpace(record[cols.fips])); err == nil {
			obs.Fips = fips
		}
	}
	return obs, true
}

// parseCumulative parses a non-negative running total.
func parseCumulative(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("cumulative count cannot be negative: %d", v)
	}
	return v, nil
}
