package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupescan/models"
)

func newTestCSVStorage(t *testing.T) *CSVStorage {
	t.Helper()
	dir := t.TempDir()
	return NewCSVStorage(
		filepath.Join(dir, "file_list.csv"),
		filepath.Join(dir, "duplicate_files.csv"),
	)
}

func testRecord(path, digest string, size int64) models.FileRecord {
	r := models.FileRecord{
		FileName:     filepath.Base(path),
		FilePath:     path,
		CreationTime: "2024-06-01 12:00:00",
		SizeBytes:    size,
	}
	if digest != "" {
		r.SHA256 = &digest
	}
	return r
}

func TestCSVLoadExistingCacheMissingFile(t *testing.T) {
	s := newTestCSVStorage(t)

	cache, err := s.LoadExistingCache()
	require.NoError(t, err)
	assert.Empty(t, cache)
}

func TestCSVSaveFilesRoundTrip(t *testing.T) {
	s := newTestCSVStorage(t)

	records := []models.FileRecord{
		testRecord("/data/a.txt", "d1", 10),
		testRecord("/data/b.txt", "d2", 20),
	}
	require.NoError(t, s.SaveFiles(records))

	cache, err := s.LoadExistingCache()
	require.NoError(t, err)
	require.Len(t, cache, 2)

	got, ok := cache[models.CacheKey{Path: "/data/a.txt", Size: 10}]
	require.True(t, ok)
	assert.Equal(t, records[0], got)
}

func TestCSVSaveFilesOverwritesPriorSet(t *testing.T) {
	s := newTestCSVStorage(t)

	require.NoError(t, s.SaveFiles([]models.FileRecord{testRecord("/data/a.txt", "d1", 10)}))
	require.NoError(t, s.SaveFiles([]models.FileRecord{testRecord("/data/b.txt", "d2", 20)}))

	cache, err := s.LoadExistingCache()
	require.NoError(t, err)
	require.Len(t, cache, 1)
	assert.Contains(t, cache, models.CacheKey{Path: "/data/b.txt", Size: 20})
}

func TestCSVSaveDuplicatesAndGet(t *testing.T) {
	s := newTestCSVStorage(t)

	groups := map[string][]models.FileRecord{
		"bbb": {testRecord("/data/c.txt", "bbb", 3), testRecord("/data/d.txt", "bbb", 3)},
		"aaa": {testRecord("/data/a.txt", "aaa", 1), testRecord("/data/b.txt", "aaa", 1)},
	}
	require.NoError(t, s.SaveDuplicates(groups))

	got, err := s.GetDuplicateGroups(1, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Stable ascending digest order.
	require.NotNil(t, got[0][0].SHA256)
	assert.Equal(t, "aaa", *got[0][0].SHA256)
	assert.Equal(t, "bbb", *got[1][0].SHA256)
	assert.Len(t, got[0], 2)
}

func TestCSVRefreshDropsWholeGroupOnMissingMember(t *testing.T) {
	s := newTestCSVStorage(t)
	dir := t.TempDir()

	var files []models.FileRecord
	for _, name := range []string{"a", "b", "c"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("same"), 0644))
		files = append(files, testRecord(path, "d1", 4))
	}
	require.NoError(t, s.SaveDuplicates(map[string][]models.FileRecord{"d1": files}))

	require.NoError(t, os.Remove(files[1].FilePath))
	require.NoError(t, s.RefreshDuplicates())

	groups, err := s.GetDuplicateGroups(1, 0)
	require.NoError(t, err)
	assert.Empty(t, groups)

	count, err := s.CountDuplicateGroups()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCSVRefreshKeepsIntactGroups(t *testing.T) {
	s := newTestCSVStorage(t)
	dir := t.TempDir()

	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0644))

	groups := map[string][]models.FileRecord{
		"d1": {testRecord(a, "d1", 4), testRecord(b, "d1", 4)},
	}
	require.NoError(t, s.SaveDuplicates(groups))
	require.NoError(t, s.RefreshDuplicates())

	got, err := s.GetDuplicateGroups(1, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0], 2)
}

func TestCSVRefreshNoDuplicatesFile(t *testing.T) {
	s := newTestCSVStorage(t)
	assert.NoError(t, s.RefreshDuplicates())
}

func TestCSVPagination(t *testing.T) {
	s := newTestCSVStorage(t)

	groups := make(map[string][]models.FileRecord, 45)
	for i := 0; i < 45; i++ {
		digest := fmt.Sprintf("%03d", i)
		groups[digest] = []models.FileRecord{
			testRecord(fmt.Sprintf("/data/%d-a", i), digest, 1),
			testRecord(fmt.Sprintf("/data/%d-b", i), digest, 1),
		}
	}
	require.NoError(t, s.SaveDuplicates(groups))

	count, err := s.CountDuplicateGroups()
	require.NoError(t, err)
	assert.Equal(t, 45, count)

	page2, err := s.GetDuplicateGroups(2, 20)
	require.NoError(t, err)
	require.Len(t, page2, 20)
	assert.Equal(t, "020", *page2[0][0].SHA256)
	assert.Equal(t, "039", *page2[19][0].SHA256)

	page3, err := s.GetDuplicateGroups(3, 20)
	require.NoError(t, err)
	assert.Len(t, page3, 5)

	page4, err := s.GetDuplicateGroups(4, 20)
	require.NoError(t, err)
	assert.Empty(t, page4)
}

func TestCSVLoadExistingCacheSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	filesPath := filepath.Join(dir, "file_list.csv")
	content := "filename,filepath,creation_time,file_size,sha256\n" +
		"a.txt,/data/a.txt,2024-06-01 12:00:00,notanumber,d1\n" +
		"b.txt,/data/b.txt,2024-06-01 12:00:00,20,d2\n"
	require.NoError(t, os.WriteFile(filesPath, []byte(content), 0644))

	s := NewCSVStorage(filesPath, filepath.Join(dir, "duplicate_files.csv"))
	cache, err := s.LoadExistingCache()
	require.NoError(t, err)
	require.Len(t, cache, 1)
	assert.Contains(t, cache, models.CacheKey{Path: "/data/b.txt", Size: 20})
}
