// Package warehouse is the persistent store for daily state metrics.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"     // SQLite driver

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/schema"
)

// StoreImpl handles durable metric storage using various database backends.
type StoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.WarehouseStore = &StoreImpl{} // Compile-time check

// NewStore initializes and returns a new warehouse store for the backend.
// The metrics and run-lock tables are created when missing, so a fresh
// database is usable without an explicit migrate step. The context bounds
// the connection check and table creation.
func NewStore(ctx context.Context, backend schema.DatabaseBackend, connStr string) (contract.WarehouseStore, error) {
	db, driverName, err := openBackend(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s warehouse. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	for _, query := range []string{createMetricsTableQuery, createRunLocksTableQuery} {
		if _, err := db.ExecContext(ctx, query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create warehouse tables: %w", err)
		}
	}

	return &StoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}, nil
}

// openBackend opens the database handle for the given backend.
func openBackend(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		db, err := sql.Open("sqlite3", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize SQLite warehouse at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, "sqlite3", nil

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to MySQL warehouse: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}
		return db, "mysql", nil

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to PostgreSQL warehouse: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, "pgx", nil

	default:
		return nil, "", fmt.Errorf("unsupported warehouse backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}
}

// Dates are stored as ISO-8601 text so (date, state) keys order and compare
// identically across all three backends.
const (
	createMetricsTableQuery = `
		CREATE TABLE IF NOT EXISTS covid_state_metrics (
			date VARCHAR(10) NOT NULL,
			state VARCHAR(50) NOT NULL,
			fips INTEGER,
			new_cases INTEGER NOT NULL,
			new_deaths INTEGER NOT NULL,
			cumulative_cases INTEGER NOT NULL,
			cumulative_deaths INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL,
			PRIMARY KEY (date, state)
		);
	`
	createRunLocksTableQuery = `
		CREATE TABLE IF NOT EXISTS covid_run_locks (
			run_id VARCHAR(36) NOT NULL,
			min_date VARCHAR(10) NOT NULL,
			max_date VARCHAR(10) NOT NULL,
			expires_at BIGINT NOT NULL,
			PRIMARY KEY (run_id)
		);
	`
)

// getUpsertQuery returns the insert-or-update statement for the backend.
func (s *StoreImpl) getUpsertQuery() string {
	switch s.backend {
	case schema.MySQLBackend:
		return `INSERT INTO covid_state_metrics (date, state, fips, new_cases, new_deaths, cumulative_cases, cumulative_deaths, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE fips = new.fips, new_cases = new.new_cases, new_deaths = new.new_deaths, cumulative_cases = new.cumulative_cases, cumulative_deaths = new.cumulative_deaths, status = new.status`

	case schema.PostgreSQLBackend:
		return `INSERT INTO covid_state_metrics (date, state, fips, new_cases, new_deaths, cumulative_cases, cumulative_deaths, status) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (date, state) DO UPDATE SET fips = EXCLUDED.fips, new_cases = EXCLUDED.new_cases, new_deaths = EXCLUDED.new_deaths, cumulative_cases = EXCLUDED.cumulative_cases, cumulative_deaths = EXCLUDED.cumulative_deaths, status = EXCLUDED.status`

	default: // SQLite
		return `INSERT OR REPLACE INTO covid_state_metrics (date, state, fips, new_cases, new_deaths, cumulative_cases, cumulative_deaths, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	}
}

// UpsertMetrics writes the whole batch inside one transaction keyed by
// (date, state). Any row failure rolls everything back; readers never see a
// partially applied run.
func (s *StoreImpl) UpsertMetrics(ctx context.Context, metrics []schema.DailyMetric) (int, error) {
	if len(metrics) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapWriteErr(fmt.Errorf("begin load transaction: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, s.getUpsertQuery())
	if err != nil {
		_ = tx.Rollback()
		return 0, wrapWriteErr(fmt.Errorf("prepare upsert: %w", err))
	}
	defer func() { _ = stmt.Close() }()

	for _, m := range metrics {
		_, err := stmt.ExecContext(ctx,
			m.Date.Format(schema.DateFormat), m.State, m.Fips,
			m.NewCases, m.NewDeaths, m.CumulativeCases, m.CumulativeDeaths,
			string(m.Status))
		if err != nil {
			_ = tx.Rollback()
			return 0, wrapWriteErr(fmt.Errorf("upsert (%s, %s): %w", m.Date.Format(schema.DateFormat), m.State, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, wrapWriteErr(fmt.Errorf("commit load transaction: %w", err))
	}
	return len(metrics), nil
}

// ReadMetrics returns stored metrics ordered by (state, date), optionally
// filtered by state and a minimum date.
func (s *StoreImpl) ReadMetrics(ctx context.Context, state string, since time.Time) ([]schema.DailyMetric, error) {
	query := `SELECT date, state, fips, new_cases, new_deaths, cumulative_cases, cumulative_deaths, status FROM covid_state_metrics`
	var args []any
	var clauses []string

	if state != "" {
		clauses = append(clauses, fmt.Sprintf("state = %s", s.placeholder(len(args)+1)))
		args = append(args, state)
	}
	if !since.IsZero() {
		clauses = append(clauses, fmt.Sprintf("date >= %s", s.placeholder(len(args)+1)))
		args = append(args, since.Format(schema.DateFormat))
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY state, date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metrics []schema.DailyMetric
	for rows.Next() {
		var m schema.DailyMetric
		var dateStr, status string
		if err := rows.Scan(&dateStr, &m.State, &m.Fips, &m.NewCases, &m.NewDeaths, &m.CumulativeCases, &m.CumulativeDeaths, &status); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		m.Date, err = time.Parse(schema.DateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("stored date %q is not ISO-8601: %w", dateStr, err)
		}
		m.Status = schema.MetricStatus(status)
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// GetStatus returns row counts and date coverage for the metrics table.
func (s *StoreImpl) GetStatus(ctx context.Context) (schema.WarehouseStatus, error) {
	status := schema.WarehouseStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM covid_state_metrics`)
	if err := row.Scan(&status.TotalRows); err != nil {
		return status, fmt.Errorf("failed to get total rows: %w", err)
	}
	if status.TotalRows == 0 {
		return status, nil
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT state), MIN(date), MAX(date) FROM covid_state_metrics`)
	var oldest, latest string
	if err := row.Scan(&status.StateCount, &oldest, &latest); err != nil {
		return status, fmt.Errorf("failed to get date coverage: %w", err)
	}

	var err error
	if status.OldestDate, err = time.Parse(schema.DateFormat, oldest); err != nil {
		return status, fmt.Errorf("stored date %q is not ISO-8601: %w", oldest, err)
	}
	if status.LatestDate, err = time.Parse(schema.DateFormat, latest); err != nil {
		return status, fmt.Errorf("stored date %q is not ISO-8601: %w", latest, err)
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (s *StoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// placeholder returns the n-th parameter placeholder for the backend.
func (s *StoreImpl) placeholder(n int) string {
	if s.backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// wrapWriteErr maps a load failure onto the run-level error taxonomy.
func wrapWriteErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", schema.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", schema.ErrWarehouseWrite, err)
}
