// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"io"
	"time"

	"github.com/statlake/covidload/schema"
)

// WarehouseStore defines the warehouse operations the pipeline core needs.
// This allows the load stage to be tested without a live database.
type WarehouseStore interface {
	// AcquireRunLock claims the [minDate, maxDate] key range for runID.
	// It fails with a conflict error when another unexpired run holds an
	// overlapping claim. The ttl guards against claims left by crashed runs.
	AcquireRunLock(ctx context.Context, runID string, minDate, maxDate time.Time, ttl time.Duration) error

	// ReleaseRunLock drops the claim held by runID.
	ReleaseRunLock(ctx context.Context, runID string) error

	// UpsertMetrics writes the batch as insert-or-update keyed by
	// (date, state) inside a single transaction. Either every row commits
	// or none do. Returns the number of rows written.
	UpsertMetrics(ctx context.Context, metrics []schema.DailyMetric) (int, error)

	// ReadMetrics returns metrics ordered by (state, date). An empty state
	// and zero since return the whole table.
	ReadMetrics(ctx context.Context, state string, since time.Time) ([]schema.DailyMetric, error)

	// GetStatus returns row counts and date coverage for the metrics table.
	GetStatus(ctx context.Context) (schema.WarehouseStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// ObjectStore defines the write-once snapshot archive used around the core
// run. Archive failures are reported but never fail the pipeline.
type ObjectStore interface {
	// Put stores data under key, replacing any prior object.
	Put(ctx context.Context, key string, data []byte) error

	// Close releases the underlying client.
	Close() error
}

// SourceClient yields the raw CSV snapshot stream for one run.
type SourceClient interface {
	// Fetch opens the snapshot byte stream. The caller owns the closer.
	Fetch(ctx context.Context) (io.ReadCloser, error)
}
