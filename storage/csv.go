package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"dupescan/dedup"
	"dupescan/logger"
	"dupescan/models"
)

var (
	filesHeader      = []string{"filename", "filepath", "creation_time", "file_size", "sha256"}
	duplicatesHeader = []string{"sha256", "filename", "filepath", "creation_time", "file_size", "duplicate_count"}
)

// CSVStorage persists the file set and duplicate groups as two flat CSV
// files. Writes go through a temp file and rename, so a failed save never
// corrupts the previous state.
type CSVStorage struct {
	filesPath      string
	duplicatesPath string
}

func NewCSVStorage(filesPath, duplicatesPath string) *CSVStorage {
	return &CSVStorage{filesPath: filesPath, duplicatesPath: duplicatesPath}
}

func (s *CSVStorage) LoadExistingCache() (map[models.CacheKey]models.FileRecord, error) {
	cache := make(map[models.CacheKey]models.FileRecord)

	file, err := os.Open(s.filesPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Get().Info().Str("path", s.filesPath).Msg("no existing file list, all files will be processed")
			return cache, nil
		}
		return cache, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return cache, fmt.Errorf("failed to read %s: %w", s.filesPath, err)
	}

	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		size, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			continue
		}
		record := models.FileRecord{
			FileName:     row[0],
			FilePath:     row[1],
			CreationTime: row[2],
			SizeBytes:    size,
		}
		if row[4] != "" {
			digest := row[4]
			record.SHA256 = &digest
		}
		cache[record.Key()] = record
	}

	logger.Get().Info().Int("records", len(cache)).Str("path", s.filesPath).Msg("loaded existing file records")
	return cache, nil
}

func (s *CSVStorage) SaveFiles(records []models.FileRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.FileName,
			record.FilePath,
			record.CreationTime,
			strconv.FormatInt(record.SizeBytes, 10),
			digestOrEmpty(record),
		})
	}
	return writeCSVAtomic(s.filesPath, filesHeader, rows)
}

func (s *CSVStorage) SaveDuplicates(groups map[string][]models.FileRecord) error {
	var rows [][]string
	for _, digest := range sortedDigests(groups) {
		files := groups[digest]
		count := strconv.Itoa(len(files))
		for _, record := range files {
			rows = append(rows, []string{
				digest,
				record.FileName,
				record.FilePath,
				record.CreationTime,
				strconv.FormatInt(record.SizeBytes, 10),
				count,
			})
		}
	}
	return writeCSVAtomic(s.duplicatesPath, duplicatesHeader, rows)
}

func (s *CSVStorage) RefreshDuplicates() error {
	groups, err := s.loadDuplicateGroups()
	if err != nil {
		return err
	}
	if groups == nil {
		return nil
	}

	live := dedup.LiveGroups(groups)
	logger.Get().Info().Int("before", len(groups)).Int("after", len(live)).Msg("refreshed duplicate groups")
	return s.SaveDuplicates(live)
}

func (s *CSVStorage) GetDuplicateGroups(page, pageSize int) ([][]models.FileRecord, error) {
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

func (s *CSVStorage) CountDuplicateGroups() (int, error) {
	groups, err := s.loadDuplicateGroups()
	if err != nil {
		return 0, err
	}
	return len(groups), nil
}

func (s *CSVStorage) Close() error {
	return nil
}

// loadDuplicateGroups reads the duplicates CSV grouped by digest. A missing
// file returns a nil map without an error.
func (s *CSVStorage) loadDuplicateGroups() (map[string][]models.FileRecord, error) {
	file, err := os.Open(s.duplicatesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.duplicatesPath, err)
	}

	groups := make(map[string][]models.FileRecord)
	for i, row := range rows {
		if i == 0 || len(row) < 6 {
			continue
		}
		size, err := strconv.ParseInt(row[4], 10, 64)
		if err != nil {
			continue
		}
		digest := row[0]
		groups[digest] = append(groups[digest], models.FileRecord{
			FileName:     row[1],
			FilePath:     row[2],
			CreationTime: row[3],
			SizeBytes:    size,
			SHA256:       &digest,
		})
	}
	return groups, nil
}

func digestOrEmpty(record models.FileRecord) string {
	if record.SHA256 == nil {
		return ""
	}
	return *record.SHA256
}

// writeCSVAtomic writes header+rows to a temp file in the target directory
// and renames it over path.
func writeCSVAtomic(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	writeErr := writer.Write(header)
	if writeErr == nil {
		writeErr = writer.WriteAll(rows)
	}
	writer.Flush()
	if writeErr == nil {
		writeErr = writer.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, writeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
