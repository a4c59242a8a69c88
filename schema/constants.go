package schema

// Custom string types for type safety.
type (
	// MetricStatus tags a DailyMetric with its validation outcome.
	MetricStatus string

	// RejectReason names the first failed validation check for a row.
	RejectReason string

	// RunStatus is the terminal status of a pipeline run.
	RunStatus string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the warehouse database backend.
	DatabaseBackend string

	// ArchiveBackend represents the object-storage backend for snapshots.
	ArchiveBackend string
)

// Metric statuses. Corrected rows are still loaded, flagged for auditing.
const (
	AcceptedStatus  MetricStatus = "accepted"
	CorrectedStatus MetricStatus = "accepted-corrected"
)

// Reject reasons, in the order the validator applies its checks.
const (
	RejectDuplicateKey  RejectReason = "duplicate_key"
	RejectUnknownState  RejectReason = "unknown_state"
	RejectNegativeDelta RejectReason = "negative_delta_unflagged"
)

// Run statuses.
const (
	RunSuccess RunStatus = "success" // every row accepted and written
	RunPartial RunStatus = "partial" // some rows skipped or rejected, run completed
	RunFailed  RunStatus = "failed"  // run aborted before or during the warehouse write
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All warehouse backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// All archive backends supported.
const (
	NoArchive    ArchiveBackend = "none" // default
	LocalArchive ArchiveBackend = "local"
	GCSArchive   ArchiveBackend = "gcs"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid warehouse backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidArchiveBackends lists all valid archive backends.
var ValidArchiveBackends = map[ArchiveBackend]struct{}{
	NoArchive:    {},
	LocalArchive: {},
	GCSArchive:   {},
}
