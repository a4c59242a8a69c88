package core

import (
	"github.com/statlake/covidload/schema"
)

// ValidationSummary aggregates per-run validation outcomes. Accepted and
// Corrected are disjoint; every written row is in exactly one of them.
type ValidationSummary struct {
	Accepted  int
	Corrected int
	Rejected  int
	Reasons   map[schema.RejectReason]int
}

// ValidateMetrics applies the ordered domain checks to each metric and
// returns the rows that may be loaded. The first failing check determines
// the rejection reason:
//
//  1. duplicate_key: the (date, state) pair already appeared in this batch
//  2. unknown_state: state is not in the reference set
//  3. negative_delta_unflagged: negative delta without the corrected tag
//     (indicates a delta-computation inconsistency; fatal to the row only)
//
// Corrected rows passing checks 1-2 remain flagged accepted-corrected and
// are still loaded.
func ValidateMetrics(metrics []schema.DailyMetric) ([]schema.DailyMetric, ValidationSummary) {
	summary := ValidationSummary{Reasons: make(map[schema.RejectReason]int)}
	seen := make(map[schema.MetricKey]struct{}, len(metrics))
	loadable := make([]schema.DailyMetric, 0, len(metrics))

	for _, m := range metrics {
		key := m.Key()
		if _, dup := seen[key]; dup {
			summary.reject(schema.RejectDuplicateKey)
			continue
		}
		seen[key] = struct{}{}

		if !schema.KnownState(m.State) {
			summary.reject(schema.RejectUnknownState)
			continue
		}

		if (m.NewCases < 0 || m.NewDeaths < 0) && m.Status != schema.CorrectedStatus {
			summary.reject(schema.RejectNegativeDelta)
			continue
		}

		if m.Status == schema.CorrectedStatus {
			summary.Corrected++
		} else {
			summary.Accepted++
		}
		loadable = append(loadable, m)
	}

	return loadable, summary
}

func (s *ValidationSummary) reject(reason schema.RejectReason) {
	s.Rejected++
	s.Reasons[reason]++
}
