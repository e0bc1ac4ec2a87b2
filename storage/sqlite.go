package storage

import (
	"database/sql"
	"fmt"

	"dupescan/db"
	"dupescan/dedup"
	"dupescan/logger"
	"dupescan/models"
)

// SQLiteStorage keeps the file set and duplicate groups in two SQLite tables.
// Every save and refresh runs inside a single transaction, so a failure
// leaves the previous state untouched.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	database, err := db.SetupDatabase(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStorage{db: database}, nil
}

func (s *SQLiteStorage) LoadExistingCache() (map[models.CacheKey]models.FileRecord, error) {
	cache := make(map[models.CacheKey]models.FileRecord)

	rows, err := s.db.Query(`
		SELECT filename, filepath, creation_time, file_size, sha256
		FROM files
	`)
	if err != nil {
		return cache, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record models.FileRecord
		var digest sql.NullString
		if err := rows.Scan(&record.FileName, &record.FilePath, &record.CreationTime, &record.SizeBytes, &digest); err != nil {
			return cache, fmt.Errorf("failed to scan file row: %w", err)
		}
		if digest.Valid && digest.String != "" {
			record.SHA256 = &digest.String
		}
		cache[record.Key()] = record
	}
	if err := rows.Err(); err != nil {
		return cache, err
	}

	logger.Get().Info().Int("records", len(cache)).Msg("loaded existing file records from database")
	return cache, nil
}

func (s *SQLiteStorage) SaveFiles(records []models.FileRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM files`); err != nil {
		return fmt.Errorf("failed to clear files: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO files (filename, filepath, creation_time, file_size, sha256)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if !record.HasDigest() {
			continue
		}
		if _, err := stmt.Exec(record.FileName, record.FilePath, record.CreationTime, record.SizeBytes, *record.SHA256); err != nil {
			return fmt.Errorf("failed to insert %s: %w", record.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit files: %w", err)
	}
	logger.Get().Info().Int("records", len(records)).Msg("saved file records to database")
	return nil
}

func (s *SQLiteStorage) SaveDuplicates(groups map[string][]models.FileRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM duplicates`); err != nil {
		return fmt.Errorf("failed to clear duplicates: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO duplicates (sha256, filename, filepath, creation_time, file_size, duplicate_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, digest := range sortedDigests(groups) {
		files := groups[digest]
		for _, record := range files {
			if _, err := stmt.Exec(digest, record.FileName, record.FilePath, record.CreationTime, record.SizeBytes, len(files)); err != nil {
				return fmt.Errorf("failed to insert duplicate %s: %w", record.FilePath, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit duplicates: %w", err)
	}
	logger.Get().Info().Int("groups", len(groups)).Msg("saved duplicate groups to database")
	return nil
}

func (s *SQLiteStorage) RefreshDuplicates() error {
	groups, err := s.loadDuplicateGroups()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}

	live := dedup.LiveGroups(groups)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for digest := range groups {
		if _, ok := live[digest]; ok {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM duplicates WHERE sha256 = ?`, digest); err != nil {
			return fmt.Errorf("failed to drop group %s: %w", digest, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit refresh: %w", err)
	}
	logger.Get().Info().Int("before", len(groups)).Int("after", len(live)).Msg("refreshed duplicate groups")
	return nil
}

func (s *SQLiteStorage) GetDuplicateGroups(page, pageSize int) ([][]models.FileRecord, error) {
	groups, err := s.loadDuplicateGroups()
	if err != nil {
		return nil, err
	}

	ordered := make([][]models.FileRecord, 0, len(groups))
	for _, digest := range sortedDigests(groups) {
		ordered = append(ordered, groups[digest])
	}
	return paginateGroups(ordered, page, pageSize), nil
}

func (s *SQLiteStorage) CountDuplicateGroups() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(DISTINCT sha256) FROM duplicates`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count duplicate groups: %w", err)
	}
	return count, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) loadDuplicateGroups() (map[string][]models.FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT sha256, filename, filepath, creation_time, file_size
		FROM duplicates
		ORDER BY sha256, filepath
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicates: %w", err)
	}
	defer rows.Close()

	groups := make(map[string][]models.FileRecord)
	for rows.Next() {
		var digest string
		var record models.FileRecord
		if err := rows.Scan(&digest, &record.FileName, &record.FilePath, &record.CreationTime, &record.SizeBytes); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate row: %w", err)
		}
		d := digest
		record.SHA256 = &d
		groups[digest] = append(groups[digest], record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}
