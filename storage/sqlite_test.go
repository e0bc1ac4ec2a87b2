package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupescan/models"
)

func newTestSQLiteStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteLoadExistingCacheEmpty(t *testing.T) {
	s := newTestSQLiteStorage(t)

	cache, err := s.LoadExistingCache()
	require.NoError(t, err)
	assert.Empty(t, cache)
}

func TestSQLiteSaveFilesRoundTrip(t *testing.T) {
	s := newTestSQLiteStorage(t)

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

func TestSQLiteSaveFilesOverwritesPriorSet(t *testing.T) {
	s := newTestSQLiteStorage(t)

	require.NoError(t, s.SaveFiles([]models.FileRecord{testRecord("/data/a.txt", "d1", 10)}))
	require.NoError(t, s.SaveFiles([]models.FileRecord{testRecord("/data/b.txt", "d2", 20)}))

	cache, err := s.LoadExistingCache()
	require.NoError(t, err)
	require.Len(t, cache, 1)
	assert.Contains(t, cache, models.CacheKey{Path: "/data/b.txt", Size: 20})
}

func TestSQLiteSaveFilesSkipsRecordsWithoutDigest(t *testing.T) {
	s := newTestSQLiteStorage(t)

	records := []models.FileRecord{
		testRecord("/data/a.txt", "d1", 10),
		testRecord("/data/broken.txt", "", 5),
	}
	require.NoError(t, s.SaveFiles(records))

	cache, err := s.LoadExistingCache()
	require.NoError(t, err)
	assert.Len(t, cache, 1)
}

func TestSQLiteDuplicatesRoundTripAndOrder(t *testing.T) {
	s := newTestSQLiteStorage(t)

	groups := map[string][]models.FileRecord{
		"bbb": {testRecord("/data/c.txt", "bbb", 3), testRecord("/data/d.txt", "bbb", 3)},
		"aaa": {testRecord("/data/a.txt", "aaa", 1), testRecord("/data/b.txt", "aaa", 1)},
	}
	require.NoError(t, s.SaveDuplicates(groups))

	got, err := s.GetDuplicateGroups(1, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "aaa", *got[0][0].SHA256)
	assert.Equal(t, "bbb", *got[1][0].SHA256)

	count, err := s.CountDuplicateGroups()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSQLiteRefreshDropsWholeGroupOnMissingMember(t *testing.T) {
	s := newTestSQLiteStorage(t)
	dir := t.TempDir()

	var intact []models.FileRecord
	for _, name := range []string{"a", "b"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("same"), 0644))
		intact = append(intact, testRecord(path, "d1", 4))
	}

	var broken []models.FileRecord
	for _, name := range []string{"c", "d", "e"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("other"), 0644))
		broken = append(broken, testRecord(path, "d2", 5))
	}

	require.NoError(t, s.SaveDuplicates(map[string][]models.FileRecord{
		"d1": intact,
		"d2": broken,
	}))

	require.NoError(t, os.Remove(broken[2].FilePath))
	require.NoError(t, s.RefreshDuplicates())

	groups, err := s.GetDuplicateGroups(1, 0)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "d1", *groups[0][0].SHA256)
	assert.Len(t, groups[0], 2)
}

func TestSQLiteRefreshEmptyStore(t *testing.T) {
	s := newTestSQLiteStorage(t)
	assert.NoError(t, s.RefreshDuplicates())
}
