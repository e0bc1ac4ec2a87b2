package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupescan/models"
)

func record(path, digest string, size int64) models.FileRecord {
	return models.FileRecord{
		FileName:     filepath.Base(path),
		FilePath:     path,
		CreationTime: "2024-06-01 12:00:00",
		SizeBytes:    size,
		SHA256:       &digest,
	}
}

func TestRenderIncludesGroupsAndEndpoint(t *testing.T) {
	groups := [][]models.FileRecord{
		{record("/data/a.txt", "abc123", 512), record("/data/b.txt", "abc123", 512)},
		{record("/data/c.txt", "def456", 2048), record("/data/d.txt", "def456", 2048)},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, groups, "http://localhost:8080/delete-file"))

	html := buf.String()
	assert.Contains(t, html, "Group 1 (2 duplicates)")
	assert.Contains(t, html, "Group 2 (2 duplicates)")
	assert.Contains(t, html, "abc123")
	assert.Contains(t, html, "def456")
	assert.Contains(t, html, "a.txt")
	assert.Contains(t, html, "512 bytes")
	assert.Contains(t, html, "2 KB")
	assert.Contains(t, html, "localhost:8080/delete-file")
}

func TestRenderCapsAtMaxGroups(t *testing.T) {
	groups := make([][]models.FileRecord, MaxGroups+5)
	for i := range groups {
		digest := string(rune('a' + i))
		groups[i] = []models.FileRecord{
			record("/data/"+digest+"-1", digest, 1),
			record("/data/"+digest+"-2", digest, 1),
		}
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, groups, "/delete-file"))

	html := buf.String()
	assert.Equal(t, MaxGroups, strings.Count(html, `<div class="group-header">`))
}

func TestRenderEmptyGroups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil, "/delete-file"))
	assert.Contains(t, buf.String(), "Duplicate Files Viewer")
}

func TestGenerateWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "viewer.html")
	groups := [][]models.FileRecord{
		{record("/data/a.txt", "abc123", 1), record("/data/b.txt", "abc123", 1)},
	}

	require.NoError(t, Generate(out, groups, "/delete-file"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "abc123")
}

func TestIsImageSniffing(t *testing.T) {
	dir := t.TempDir()

	// Minimal PNG signature is enough for header sniffing.
	png := filepath.Join(dir, "pic.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n"), 0644))
	assert.True(t, isImage(png))

	text := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(text, []byte("just text"), 0644))
	assert.False(t, isImage(text))

	assert.False(t, isImage(filepath.Join(dir, "missing")))
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "0 bytes", humanSize(0))
	assert.Equal(t, "1023 bytes", humanSize(1023))
	assert.Equal(t, "1 KB", humanSize(1024))
	assert.Equal(t, "1023 KB", humanSize(1024*1024-1))
	assert.Equal(t, "5 MB", humanSize(5*1024*1024))
}
