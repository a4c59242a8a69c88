package warehouse

import (
	"os"
	"path/filepath"
)

// GetDBFilePath returns the default SQLite DB file for the warehouse.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".covidload_warehouse.db"
	}
	return filepath.Join(homeDir, ".covidload_warehouse.db")
}
