package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"dupescan/logger"
)

// SetupDatabase opens the SQLite database at dbPath, creating the file and
// running migrations on first use.
func SetupDatabase(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	needsInit := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		needsInit = true
	}

	database, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if needsInit || NeedsMigration(database) {
		logger.Get().Info().Str("db", dbPath).Msg("running database migrations")
		if err := RunMigrations(dbPath); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %v", err)
		}
	}

	// Performance settings
	_, err = database.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;
		PRAGMA foreign_keys = ON;
	`)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to set database pragmas: %v", err)
	}

	return database, nil
}
