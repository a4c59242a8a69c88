package schema

import "errors"

// Fatal error kinds for a pipeline run. Per-row conditions (malformed rows,
// duplicate keys, unknown states, unflagged negative deltas) are recovered
// locally and surface only as counts in the RunSummary; these sentinels mark
// the systemic conditions that abort a run. Wrap them with %w so callers can
// test with errors.Is.
var (
	// ErrSourceUnavailable means the snapshot stream could not be opened or read.
	// The run aborts before any writes.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrThresholdExceeded means too many rows were rejected or malformed,
	// signaling a systemic upstream problem. No warehouse write occurs.
	ErrThresholdExceeded = errors.New("reject threshold exceeded")

	// ErrWarehouseWrite means the load transaction failed and was rolled back.
	// No partial state is persisted; the caller re-runs the whole batch.
	ErrWarehouseWrite = errors.New("warehouse write failed")

	// ErrRunConflict means another run holds an unexpired claim on an
	// overlapping (date, state) key range.
	ErrRunConflict = errors.New("conflicting run holds the key range")

	// ErrTimeout means an external I/O call exceeded its bounded deadline.
	ErrTimeout = errors.New("operation timed out")
)

// FailureKind maps a fatal error to the stable kind string carried in the
// RunSummary for operator diagnosis.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceUnavailable):
		return "SourceUnavailable"
	case errors.Is(err, ErrThresholdExceeded):
		return "ThresholdExceeded"
	case errors.Is(err, ErrRunConflict):
		return "RunConflict"
	case errors.Is(err, ErrWarehouseWrite):
		return "WarehouseWriteFailed"
	case errors.Is(err, ErrTimeout):
		return "Timeout"
	default:
		return "Unknown"
	}
}
