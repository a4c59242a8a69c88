package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statlake/covidload/schema"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func obs(date time.Time, state string, cases, deaths int) schema.RawObservation {
	return schema.RawObservation{Date: date, State: state, CumulativeCases: cases, CumulativeDeaths: deaths}
}

func TestComputeDeltas_ConsecutiveDays(t *testing.T) {
	out := ComputeDeltas([]schema.RawObservation{
		obs(day(2021, 3, 1), "California", 100, 5),
		obs(day(2021, 3, 2), "California", 150, 6),
	})

	assert.Equal(t, 1, out.BaselineCount)
	require.Len(t, out.Metrics, 1)

	m := out.Metrics[0]
	assert.Equal(t, 50, m.NewCases)
	assert.Equal(t, 1, m.NewDeaths)
	assert.Equal(t, 150, m.CumulativeCases)
	assert.Equal(t, schema.AcceptedStatus, m.Status)
}

func TestComputeDeltas_DownwardCorrectionPreservesSign(t *testing.T) {
	out := ComputeDeltas([]schema.RawObservation{
		obs(day(2021, 3, 2), "California", 150, 6),
		obs(day(2021, 3, 3), "California", 140, 6),
	})

	require.Len(t, out.Metrics, 1)
	m := out.Metrics[0]
	assert.Equal(t, -10, m.NewCases, "downward revisions keep their sign")
	assert.Equal(t, 0, m.NewDeaths)
	assert.Equal(t, schema.CorrectedStatus, m.Status)
}

func TestComputeDeltas_GapDaysNotInterpolated(t *testing.T) {
	out := ComputeDeltas([]schema.RawObservation{
		obs(day(2021, 3, 1), "Texas", 100, 10),
		obs(day(2021, 3, 5), "Texas", 180, 13),
	})

	require.Len(t, out.Metrics, 1)
	m := out.Metrics[0]
	assert.Equal(t, day(2021, 3, 5), m.Date, "delta lands on the observed date, not the gap")
	assert.Equal(t, 80, m.NewCases)
	assert.Equal(t, 3, m.NewDeaths)
}

func TestComputeDeltas_StatesArePartitioned(t *testing.T) {
	out := ComputeDeltas([]schema.RawObservation{
		obs(day(2021, 3, 2), "Washington", 45, 1),
		obs(day(2021, 3, 1), "California", 100, 5),
		obs(day(2021, 3, 1), "Washington", 40, 1),
		obs(day(2021, 3, 2), "California", 150, 6),
	})

	assert.Equal(t, 2, out.BaselineCount, "one baseline per state")
	require.Len(t, out.Metrics, 2)

	byState := make(map[string]schema.DailyMetric)
	for _, m := range out.Metrics {
		byState[m.State] = m
	}
	assert.Equal(t, 50, byState["California"].NewCases)
	assert.Equal(t, 5, byState["Washington"].NewCases)
}

func TestComputeDeltas_UnsortedInput(t *testing.T) {
	// Dates arrive shuffled; deltas must follow chronological order per state.
	out := ComputeDeltas([]schema.RawObservation{
		obs(day(2021, 3, 3), "Oregon", 30, 0),
		obs(day(2021, 3, 1), "Oregon", 10, 0),
		obs(day(2021, 3, 2), "Oregon", 20, 0),
	})

	assert.Equal(t, 1, out.BaselineCount)
	require.Len(t, out.Metrics, 2)
	assert.Equal(t, day(2021, 3, 2), out.Metrics[0].Date)
	assert.Equal(t, 10, out.Metrics[0].NewCases)
	assert.Equal(t, day(2021, 3, 3), out.Metrics[1].Date)
	assert.Equal(t, 10, out.Metrics[1].NewCases)
}

func TestComputeDeltas_SingleObservationPerState(t *testing.T) {
	out := ComputeDeltas([]schema.RawObservation{
		obs(day(2021, 3, 1), "California", 100, 5),
	})

	assert.Equal(t, 1, out.BaselineCount)
	assert.Empty(t, out.Metrics, "a lone observation has nothing to delta against")
}

func TestComputeDeltas_Empty(t *testing.T) {
	out := ComputeDeltas(nil)

	assert.Zero(t, out.BaselineCount)
	assert.Empty(t, out.Metrics)
}

func TestComputeDeltas_InputNotMutated(t *testing.T) {
	input := []schema.RawObservation{
		obs(day(2021, 3, 2), "California", 150, 6),
		obs(day(2021, 3, 1), "California", 100, 5),
	}

	ComputeDeltas(input)

	assert.Equal(t, day(2021, 3, 2), input[0].Date, "caller slice order must survive")
}
