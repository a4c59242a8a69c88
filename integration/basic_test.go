//go:build basic

package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCovidloadWithSQLite runs the full CLI surface against the default
// SQLite warehouse, using a throwaway database file.
func TestCovidloadWithSQLite(t *testing.T) {
	snapshot := writeSnapshotFixture(t)
	dbPath := filepath.Join(t.TempDir(), "warehouse.db")

	_ = os.Setenv("COVIDLOAD_WAREHOUSE_BACKEND", "sqlite")
	_ = os.Setenv("COVIDLOAD_WAREHOUSE_DB_CONNECT", dbPath)
	defer func() { _ = os.Unsetenv("COVIDLOAD_WAREHOUSE_BACKEND") }()
	defer func() { _ = os.Unsetenv("COVIDLOAD_WAREHOUSE_DB_CONNECT") }()

	err := runCovidloadCommand(t, "run", snapshot, "--as-of", "2021-03-03")
	require.NoError(t, err)

	err = runCovidloadCommand(t, "run", snapshot, "--as-of", "2021-03-03", "--dry-run")
	require.NoError(t, err)

	err = runCovidloadCommand(t, "status")
	require.NoError(t, err)

	err = runCovidloadCommand(t, "export", "--output", "csv")
	require.NoError(t, err)

	err = runCovidloadCommand(t, "version")
	require.NoError(t, err)
}
