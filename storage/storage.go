package storage

import (
	"fmt"
	"sort"

	"dupescan/config"
	"dupescan/models"
)

// Storage is the persistence contract shared by the CSV and SQLite backends.
// It owns the durable file set and duplicate groups; callers hold only
// transient in-memory copies.
type Storage interface {
	// LoadExistingCache returns the prior scan's (path, size) -> record
	// mapping. A missing backing store yields an empty map, not an error.
	LoadExistingCache() (map[models.CacheKey]models.FileRecord, error)

	// SaveFiles atomically replaces the full persisted file set.
	SaveFiles(records []models.FileRecord) error

	// SaveDuplicates replaces the full persisted duplicate-group set.
	SaveDuplicates(groups map[string][]models.FileRecord) error

	// RefreshDuplicates drops every group with a member missing on disk and
	// persists the survivors, replacing the previous set.
	RefreshDuplicates() error

	// GetDuplicateGroups returns groups in ascending digest order. page
	// starts at 1; pageSize <= 0 disables pagination.
	GetDuplicateGroups(page, pageSize int) ([][]models.FileRecord, error)

	// CountDuplicateGroups returns the total number of persisted groups.
	CountDuplicateGroups() (int, error)

	Close() error
}

// New constructs the backend selected by the configuration.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageType {
	case config.StorageSQLite:
		return NewSQLiteStorage(cfg.SQLite.Path)
	case config.StorageCSV:
		return NewCSVStorage(cfg.CSV.FilesPath, cfg.CSV.DuplicatesPath), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}

// sortedDigests returns the group digests in ascending order, giving both
// backends the same stable presentation order.
func sortedDigests(groups map[string][]models.FileRecord) []string {
	digests := make([]string, 0, len(groups))
	for digest := range groups {
		digests = append(digests, digest)
	}
	sort.Strings(digests)
	return digests
}

// paginateGroups slices an ordered group list down to one page. page starts
// at 1; pageSize <= 0 returns everything.
func paginateGroups(groups [][]models.FileRecord, page, pageSize int) [][]models.FileRecord {
	if pageSize <= 0 {
		return groups
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(groups) {
		return [][]models.FileRecord{}
	}
	end := start + pageSize
	if end > len(groups) {
		end = len(groups)
	}
	return groups[start:end]
}
