package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statlake/covidload/schema"
)

func TestValidateMetrics_AllClean(t *testing.T) {
	metrics := []schema.DailyMetric{
		{Date: day(2021, 3, 2), State: "California", NewCases: 50, Status: schema.AcceptedStatus},
		{Date: day(2021, 3, 2), State: "Washington", NewCases: 5, Status: schema.AcceptedStatus},
	}

	loadable, summary := ValidateMetrics(metrics)

	assert.Len(t, loadable, 2)
	assert.Equal(t, 2, summary.Accepted)
	assert.Zero(t, summary.Corrected)
	assert.Zero(t, summary.Rejected)
}

func TestValidateMetrics_DuplicateKey(t *testing.T) {
	metrics := []schema.DailyMetric{
		{Date: day(2021, 3, 2), State: "California", NewCases: 50, Status: schema.AcceptedStatus},
		{Date: day(2021, 3, 2), State: "California", NewCases: 60, Status: schema.AcceptedStatus},
	}

	loadable, summary := ValidateMetrics(metrics)

	require.Len(t, loadable, 1)
	assert.Equal(t, 50, loadable[0].NewCases, "first occurrence wins")
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 1, summary.Reasons[schema.RejectDuplicateKey])
}

func TestValidateMetrics_UnknownState(t *testing.T) {
	metrics := []schema.DailyMetric{
		{Date: day(2021, 3, 2), State: "Atlantis", NewCases: 50, Status: schema.AcceptedStatus},
		{Date: day(2021, 3, 2), State: "Guam", NewCases: 3, Status: schema.AcceptedStatus},
	}

	loadable, summary := ValidateMetrics(metrics)

	require.Len(t, loadable, 1)
	assert.Equal(t, "Guam", loadable[0].State, "territories are in the reference set")
	assert.Equal(t, 1, summary.Reasons[schema.RejectUnknownState])
}

func TestValidateMetrics_NegativeDeltaMustBeFlagged(t *testing.T) {
	metrics := []schema.DailyMetric{
		{Date: day(2021, 3, 2), State: "California", NewCases: -10, Status: schema.CorrectedStatus},
		{Date: day(2021, 3, 3), State: "California", NewCases: -10, Status: schema.AcceptedStatus},
	}

	loadable, summary := ValidateMetrics(metrics)

	require.Len(t, loadable, 1)
	assert.Equal(t, schema.CorrectedStatus, loadable[0].Status)
	assert.Equal(t, 1, summary.Corrected)
	assert.Zero(t, summary.Accepted)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 1, summary.Reasons[schema.RejectNegativeDelta])
}

func TestValidateMetrics_CheckOrderDuplicateBeforeState(t *testing.T) {
	// A row that is both a duplicate and an unknown state reports duplicate_key.
	metrics := []schema.DailyMetric{
		{Date: day(2021, 3, 2), State: "Atlantis", NewCases: 5, Status: schema.AcceptedStatus},
		{Date: day(2021, 3, 2), State: "Atlantis", NewCases: 5, Status: schema.AcceptedStatus},
	}

	_, summary := ValidateMetrics(metrics)

	assert.Equal(t, 1, summary.Reasons[schema.RejectUnknownState])
	assert.Equal(t, 1, summary.Reasons[schema.RejectDuplicateKey])
}

func TestValidateMetrics_CountsAreDisjointAndComplete(t *testing.T) {
	metrics := []schema.DailyMetric{
		{Date: day(2021, 3, 2), State: "California", NewCases: 50, Status: schema.AcceptedStatus},
		{Date: day(2021, 3, 3), State: "California", NewCases: -5, Status: schema.CorrectedStatus},
		{Date: day(2021, 3, 2), State: "Atlantis", NewCases: 1, Status: schema.AcceptedStatus},
	}

	loadable, summary := ValidateMetrics(metrics)

	assert.Equal(t, len(metrics), summary.Accepted+summary.Corrected+summary.Rejected,
		"every row lands in exactly one bucket")
	assert.Equal(t, summary.Accepted+summary.Corrected, len(loadable))
}

func TestValidateMetrics_Empty(t *testing.T) {
	loadable, summary := ValidateMetrics(nil)

	assert.Empty(t, loadable)
	assert.Zero(t, summary.Rejected)
	assert.NotNil(t, summary.Reasons)
}
