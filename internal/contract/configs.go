package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/statlake/covidload/schema"
)

// Default values for configuration.
const (
	// DefaultSourceURL is the canonical cumulative us-states feed.
	DefaultSourceURL = "https://raw.githubusercontent.com/nytimes/covid-19-data/master/us-states.csv"

	// DefaultRejectThreshold is the fraction of bad rows tolerated before
	// the run is treated as a systemic source failure.
	DefaultRejectThreshold = 0.05

	// DefaultTimeout bounds each external I/O call (source, warehouse, archive).
	DefaultTimeout = 2 * time.Minute

	// DefaultLockTTL is how long a run-lock claim stays valid before other
	// runs may treat it as abandoned.
	DefaultLockTTL = 30 * time.Minute

	// MetricsTableName is the warehouse table the pipeline loads.
	MetricsTableName = "covid_state_metrics"
)

// Config holds the validated runtime configuration for a pipeline run.
type Config struct {
	SourceURL  string    // HTTP location of the cumulative snapshot
	SourceFile string    // Local file override; takes precedence over SourceURL
	AsOf       time.Time // Logical run date, used for archive keys and the summary

	RejectThreshold float64       // Fraction of bad rows that fails the run
	Timeout         time.Duration // Upper bound per external I/O call
	LockTTL         time.Duration // Run-lock claim lifetime

	WarehouseBackend   schema.DatabaseBackend
	WarehouseDBConnect string // Please use env var as this is plaintext

	ArchiveBackend schema.ArchiveBackend
	ArchiveBucket  string // GCS bucket name (gcs backend)
	ArchiveKeyFile string // Service account key path (gcs backend)
	ArchiveDir     string // Local directory (local backend)

	Output     schema.OutputMode
	OutputFile string
	DryRun     bool // Run everything except the warehouse write and archive puts

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	SourceFileStr string

	SourceURL       string  `mapstructure:"source-url"`
	AsOf            string  `mapstructure:"as-of"`
	RejectThreshold float64 `mapstructure:"reject-threshold"`
	Timeout         string  `mapstructure:"timeout"`
	LockTTL         string  `mapstructure:"lock-ttl"`

	WarehouseBackend   string `mapstructure:"warehouse-backend"`
	WarehouseDBConnect string `mapstructure:"warehouse-db-connect"`

	ArchiveBackend string `mapstructure:"archive-backend"`
	ArchiveBucket  string `mapstructure:"archive-bucket"`
	ArchiveKeyFile string `mapstructure:"archive-key-file"`
	ArchiveDir     string `mapstructure:"archive-dir"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	DryRun     bool   `mapstructure:"dry-run"`
	Color      string `mapstructure:"color"`
}

// ProcessConfigInput validates the raw input and fills in the final Config.
func ProcessConfigInput(input *ConfigRawInput, cfg *Config) error {
	cfg.SourceURL = input.SourceURL
	if cfg.SourceURL == "" {
		cfg.SourceURL = DefaultSourceURL
	}
	cfg.SourceFile = input.SourceFileStr

	asOf, err := parseAsOfDate(input.AsOf)
	if err != nil {
		return err
	}
	cfg.AsOf = asOf

	if input.RejectThreshold < 0 || input.RejectThreshold >= 1 {
		return fmt.Errorf("reject threshold must be in [0, 1), got %v", input.RejectThreshold)
	}
	cfg.RejectThreshold = input.RejectThreshold

	cfg.Timeout, err = parseDurationOrDefault(input.Timeout, DefaultTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	cfg.LockTTL, err = parseDurationOrDefault(input.LockTTL, DefaultLockTTL)
	if err != nil {
		return fmt.Errorf("invalid lock ttl: %w", err)
	}

	backend := schema.DatabaseBackend(strings.ToLower(input.WarehouseBackend))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("unsupported warehouse backend: %s. Must be sqlite, mysql, or postgresql", input.WarehouseBackend)
	}
	cfg.WarehouseBackend = backend
	cfg.WarehouseDBConnect = input.WarehouseDBConnect

	archive := schema.ArchiveBackend(strings.ToLower(input.ArchiveBackend))
	if _, ok := schema.ValidArchiveBackends[archive]; !ok {
		return fmt.Errorf("unsupported archive backend: %s. Must be none, local, or gcs", input.ArchiveBackend)
	}
	cfg.ArchiveBackend = archive
	cfg.ArchiveBucket = input.ArchiveBucket
	cfg.ArchiveKeyFile = input.ArchiveKeyFile
	cfg.ArchiveDir = input.ArchiveDir
	if archive == schema.GCSArchive && cfg.ArchiveBucket == "" {
		return fmt.Errorf("archive backend gcs requires --archive-bucket")
	}
	if archive == schema.LocalArchive && cfg.ArchiveDir == "" {
		return fmt.Errorf("archive backend local requires --archive-dir")
	}

	output := schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[output]; !ok {
		return fmt.Errorf("unsupported output mode: %s. Must be text, csv, json, or parquet", input.Output)
	}
	cfg.Output = output
	cfg.OutputFile = input.OutputFile
	cfg.DryRun = input.DryRun

	cfg.UseColors = parseBoolish(input.Color, true)

	return nil
}

// parseAsOfDate resolves the logical run date. Empty means today (UTC).
func parseAsOfDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(schema.DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as-of date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// parseDurationOrDefault parses a Go duration string, falling back to def
// when the input is empty.
func parseDurationOrDefault(s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %v", d)
	}
	return d, nil
}

// parseBoolish interprets yes/no style flag values.
func parseBoolish(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return def
	}
}
