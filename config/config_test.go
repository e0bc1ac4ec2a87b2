package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StorageCSV, cfg.StorageType)
	assert.Equal(t, "file_list.csv", cfg.CSV.FilesPath)
	assert.Equal(t, "duplicate_files.csv", cfg.CSV.DuplicatesPath)
	assert.Equal(t, "file_database.db", cfg.SQLite.Path)
	assert.Equal(t, "info", cfg.Logging.Level)

	// The defaults get recorded on disk for the next run.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadReadsExistingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{
  "storage_type": "sqlite",
  "sqlite": {"path": "/var/lib/dupescan/files.db"},
  "logging": {"level": "debug"}
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.StorageType)
	assert.Equal(t, "/var/lib/dupescan/files.db", cfg.SQLite.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset sections keep their defaults.
	assert.Equal(t, "file_list.csv", cfg.CSV.FilesPath)
}

func TestLoadRejectsUnknownStorageType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"storage_type": "redis"}`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage_type")
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
