package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Storage backend identifiers accepted in the config document.
const (
	StorageCSV    = "csv"
	StorageSQLite = "sqlite"
)

// DefaultPath is where commands look for the config document unless told
// otherwise.
const DefaultPath = "config.json"

type CSVConfig struct {
	FilesPath      string `mapstructure:"files_path"`
	DuplicatesPath string `mapstructure:"duplicates_path"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Config is the persisted JSON configuration document. storage_type selects
// the backend; the other sections hold backend paths and logging settings.
type Config struct {
	StorageType string        `mapstructure:"storage_type"`
	CSV         CSVConfig     `mapstructure:"csv"`
	SQLite      SQLiteConfig  `mapstructure:"sqlite"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// Load reads the config document at path. When the file does not exist the
// defaults are written out so the backend choice is recorded explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("storage_type", StorageCSV)
	v.SetDefault("csv.files_path", "file_list.csv")
	v.SetDefault("csv.duplicates_path", "duplicate_files.csv")
	v.SetDefault("sqlite.path", "file_database.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			if werr := v.WriteConfigAs(path); werr != nil {
				return nil, fmt.Errorf("failed to write default config %s: %w", path, werr)
			}
		} else {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.StorageType != StorageCSV && cfg.StorageType != StorageSQLite {
		return nil, fmt.Errorf("unknown storage_type %q (expected %q or %q)", cfg.StorageType, StorageCSV, StorageSQLite)
	}

	return &cfg, nil
}
