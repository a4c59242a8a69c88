package core

import (
	"sort"

	"github.com/statlake/covidload/schema"
)

// DeltaOutput is the result of converting cumulative observations into
// per-day deltas.
type DeltaOutput struct {
	Metrics       []schema.DailyMetric // one per (state, date) with a prior observation
	BaselineCount int                  // earliest-per-state rows, excluded from Metrics
}

// ComputeDeltas turns cumulative observations into per-state daily deltas.
// Observations are partitioned by state and ordered by date ascending; each
// delta is taken against the most recent prior date for that state, however
// large the calendar gap (missing days are never interpolated). The earliest
// observation per state is a baseline with nothing to delta against and is
// excluded. A cumulative count lower than its predecessor yields a negative
// delta tagged CorrectedStatus; the sign is preserved so consumers can tell
// reporting artifacts from genuine anomalies.
//
// The per-state "most recent observation" is an explicit local map so the
// computation stays re-entrant across runs.
func ComputeDeltas(observations []schema.RawObservation) DeltaOutput {
	ordered := make([]schema.RawObservation, len(observations))
	copy(ordered, observations)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].State != ordered[j].State {
			return ordered[i].State < ordered[j].State
		}
		return ordered[i].Date.Before(ordered[j].Date)
	})

	var out DeltaOutput
	previous := make(map[string]schema.RawObservation)

	for _, obs := range ordered {
		prior, seen := previous[obs.State]
		previous[obs.State] = obs

		if !seen {
			out.BaselineCount++
			continue
		}

		metric := schema.DailyMetric{
			Date:             obs.Date,
			State:            obs.State,
			Fips:             obs.Fips,
			NewCases:         obs.CumulativeCases - prior.CumulativeCases,
			NewDeaths:        obs.CumulativeDeaths - prior.CumulativeDeaths,
			CumulativeCases:  obs.CumulativeCases,
			CumulativeDeaths: obs.CumulativeDeaths,
			Status:           schema.AcceptedStatus,
		}
		if metric.NewCases < 0 || metric.NewDeaths < 0 {
			metric.Status = schema.CorrectedStatus
		}
		out.Metrics = append(out.Metrics, metric)
	}

	return out
}
