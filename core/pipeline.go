// Package core has the transform-and-load pipeline logic: parsing cumulative
// snapshots, computing per-state daily deltas, validating them and loading
// the warehouse.
package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/schema"
)

// RunOptions carries the per-run parameters for RunPipeline.
type RunOptions struct {
	RunID           string        // generated when empty
	AsOf            time.Time     // logical run date for the summary
	RejectThreshold float64       // fraction of bad rows tolerated
	LockTTL         time.Duration // run-lock claim lifetime
	DryRun          bool          // skip the warehouse write
}

// RunPipeline executes one batch run: parse, delta, validate, load. It
// always returns a RunSummary populated with every count gathered before
// the run stopped, alongside the fatal error if the run aborted. Per-row
// problems are recovered and counted; only a dead source, a threshold
// breach, a key-range conflict or a failed load transaction is fatal.
func RunPipeline(ctx context.Context, src io.Reader, store contract.WarehouseStore, opts RunOptions) (schema.RunSummary, error) {
	start := time.Now()
	summary := schema.RunSummary{
		RunID:  opts.RunID,
		AsOf:   opts.AsOf,
		Status: schema.RunFailed,
	}
	if summary.RunID == "" {
		summary.RunID = uuid.NewString()
	}

	observations, stats, err := ParseObservations(src)
	summary.TotalRows = stats.TotalRows
	summary.MalformedCount = stats.MalformedRows
	if err != nil {
		return finish(summary, start, err)
	}

	deltas := ComputeDeltas(observations)
	summary.BaselineCount = deltas.BaselineCount

	loadable, outcome := ValidateMetrics(deltas.Metrics)
	summary.AcceptedCount = outcome.Accepted
	summary.CorrectedCount = outcome.Corrected
	summary.RejectedCount = outcome.Rejected
	summary.RejectedReasons = outcome.Reasons

	if exceedsThreshold(outcome.Rejected+stats.MalformedRows, stats.TotalRows, opts.RejectThreshold) {
		err = fmt.Errorf("%w: %d of %d rows bad (threshold %.2f)",
			schema.ErrThresholdExceeded, outcome.Rejected+stats.MalformedRows, stats.TotalRows, opts.RejectThreshold)
		return finish(summary, start, err)
	}

	if opts.DryRun || len(loadable) == 0 {
		summary.Status = runStatus(summary)
		return finish(summary, start, nil)
	}

	minDate, maxDate := dateRange(loadable)
	if err := store.AcquireRunLock(ctx, summary.RunID, minDate, maxDate, opts.LockTTL); err != nil {
		return finish(summary, start, err)
	}
	defer func() {
		if relErr := store.ReleaseRunLock(ctx, summary.RunID); relErr != nil {
			// The claim expires on its own after the TTL.
			contract.LogWarning("could not release run lock", relErr)
		}
	}()

	written, err := store.UpsertMetrics(ctx, loadable)
	summary.WrittenCount = written
	if err != nil {
		return finish(summary, start, err)
	}

	summary.Status = runStatus(summary)
	return finish(summary, start, nil)
}

// exceedsThreshold reports whether bad/total crosses the configured fraction.
func exceedsThreshold(bad, total int, threshold float64) bool {
	if total == 0 || bad == 0 {
		return false
	}
	return float64(bad)/float64(total) > threshold
}

// runStatus derives the terminal status for a run that completed.
func runStatus(summary schema.RunSummary) schema.RunStatus {
	if summary.MalformedCount > 0 || summary.RejectedCount > 0 {
		return schema.RunPartial
	}
	return schema.RunSuccess
}

// dateRange returns the inclusive [min, max] dates covered by the batch.
func dateRange(metrics []schema.DailyMetric) (time.Time, time.Time) {
	minDate, maxDate := metrics[0].Date, metrics[0].Date
	for _, m := range metrics[1:] {
		if m.Date.Before(minDate) {
			minDate = m.Date
		}
		if m.Date.After(maxDate) {
			maxDate = m.Date
		}
	}
	return minDate, maxDate
}

func finish(summary schema.RunSummary, start time.Time, err error) (schema.RunSummary, error) {
	summary.Duration = time.Since(start)
	if err != nil {
		summary.Status = schema.RunFailed
		summary.FailureKind = schema.FailureKind(err)
	}
	return summary, err
}
