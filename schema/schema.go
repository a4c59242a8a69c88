// Package schema has models, enums and reference data for all parts of covidload.
package schema

import "time"

// DateFormat is the calendar-date representation used by the source feed
// and by the warehouse date column.
const DateFormat = "2006-01-02"

// RawObservation is one cumulative row from the upstream snapshot.
// It is uniquely keyed by (Date, State) and never mutated after parsing;
// a newer snapshot supersedes it wholesale.
type RawObservation struct {
	Date             time.Time // Calendar date of the report (UTC midnight)
	State            string    // State or territory name as reported upstream
	Fips             int       // FIPS code for the state (0 if absent from the feed)
	CumulativeCases  int       // Running total of cases as of Date
	CumulativeDeaths int       // Running total of deaths as of Date
}

// DailyMetric is the per-state, per-day delta derived from two
// RawObservations: the row for Date and the most recent prior row for the
// same state. NewCases and NewDeaths may be negative when the source revised
// a cumulative count downward; such rows carry CorrectedStatus instead of
// being clamped.
type DailyMetric struct {
	Date             time.Time
	State            string
	Fips             int
	NewCases         int
	NewDeaths        int
	CumulativeCases  int
	CumulativeDeaths int
	Status           MetricStatus
}

// Key returns the (date, state) identity of the metric.
func (m DailyMetric) Key() MetricKey {
	return MetricKey{Date: m.Date.Format(DateFormat), State: m.State}
}

// MetricKey is the comparable (date, state) pair used for duplicate
// detection and warehouse addressing.
type MetricKey struct {
	Date  string
	State string
}

// ReadStats reports what the reader saw at end of stream.
type ReadStats struct {
	TotalRows     int // Data rows encountered, including skipped ones
	MalformedRows int // Rows skipped due to parse failures
}

// RunSummary is returned by every pipeline run, including fatal ones.
// Counts reflect everything gathered before the run stopped.
type RunSummary struct {
	RunID           string                `json:"run_id"`
	AsOf            time.Time             `json:"as_of"`
	TotalRows       int                   `json:"total_rows"`
	MalformedCount  int                   `json:"malformed_count"`
	BaselineCount   int                   `json:"baseline_count"`
	AcceptedCount   int                   `json:"accepted_count"`
	CorrectedCount  int                   `json:"corrected_count"`
	RejectedCount   int                   `json:"rejected_count"`
	RejectedReasons map[RejectReason]int  `json:"rejected_reasons,omitempty"`
	WrittenCount    int                   `json:"written_count"`
	Status          RunStatus             `json:"status"`
	FailureKind     string                `json:"failure_kind,omitempty"`
	Duration        time.Duration         `json:"duration_ns"`
}

// WarehouseStatus describes the current state of the metrics table.
type WarehouseStatus struct {
	Backend    string
	Connected  bool
	TotalRows  int
	StateCount int
	LatestDate time.Time
	OldestDate time.Time
}
