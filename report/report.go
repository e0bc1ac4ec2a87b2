package report

import (
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/h2non/filetype"

	"dupescan/models"
)

// MaxGroups limits the viewer to the first duplicate groups, matching the
// size the static page is meant for.
const MaxGroups = 10

// sniffLen is how many leading bytes filetype needs to identify a format.
const sniffLen = 261

type fileCard struct {
	Name    string
	Path    string
	Created string
	Size    string
	IsImage bool
}

type groupView struct {
	Index  int
	SHA256 string
	Count  int
	Files  []fileCard
}

type pageData struct {
	Groups         []groupView
	DeleteEndpoint string
}

// Render writes the duplicate viewer HTML for the given groups. Delete
// buttons POST to deleteEndpoint, which should point at the /delete-file API
// route.
func Render(w io.Writer, groups [][]models.FileRecord, deleteEndpoint string) error {
	views := make([]groupView, 0, len(groups))
	for i, group := range groups {
		if i >= MaxGroups {
			break
		}
		view := groupView{Index: i + 1, Count: len(group)}
		if len(group) > 0 && group[0].SHA256 != nil {
			view.SHA256 = *group[0].SHA256
		}
		for _, record := range group {
			view.Files = append(view.Files, fileCard{
				Name:    record.FileName,
				Path:    record.FilePath,
				Created: record.CreationTime,
				Size:    humanSize(record.SizeBytes),
				IsImage: isImage(record.FilePath),
			})
		}
		views = append(views, view)
	}

	return viewerTemplate.Execute(w, pageData{Groups: views, DeleteEndpoint: deleteEndpoint})
}

// Generate writes the viewer to a standalone HTML file.
func Generate(path string, groups [][]models.FileRecord, deleteEndpoint string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := Render(file, groups, deleteEndpoint); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// isImage sniffs the file's leading bytes. Unreadable or vanished files get
// no preview.
func isImage(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false
	}
	return filetype.IsImage(head[:n])
}

func humanSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%d KB", size/1024)
	default:
		return fmt.Sprintf("%d MB", size/(1024*1024))
	}
}

var viewerTemplate = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Duplicate Files Viewer</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
        .group { background-color: white; border-radius: 8px; padding: 20px; margin-bottom: 30px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .group-header { border-bottom: 2px solid #eee; padding-bottom: 10px; margin-bottom: 15px; }
        .group-title { font-size: 18px; font-weight: bold; color: #333; }
        .sha256 { font-family: monospace; font-size: 14px; color: #666; word-break: break-all; }
        .files-container { display: flex; flex-wrap: wrap; gap: 20px; }
        .file-card { border: 1px solid #ddd; border-radius: 4px; padding: 10px; width: 200px; background-color: #fafafa; }
        .file-image { width: 100%; height: 150px; object-fit: cover; border-radius: 4px; background-color: #eee; }
        .file-info { margin-top: 10px; font-size: 12px; }
        .file-name { font-weight: bold; margin-bottom: 5px; word-break: break-word; }
        .file-path { color: #666; margin-bottom: 5px; word-break: break-word; }
        .file-time, .file-size { color: #888; margin-bottom: 3px; }
        .delete-btn { background-color: #ff4444; color: white; border: none; padding: 5px 10px; border-radius: 3px; cursor: pointer; font-size: 11px; width: 100%; margin-top: 8px; }
        .delete-btn:hover { background-color: #cc0000; }
        .deleted { opacity: 0.5; text-decoration: line-through; }
        h1 { color: #333; }
    </style>
</head>
<body>
    <h1>Duplicate Files Viewer</h1>

    <script>
        function deleteFile(filePath, element) {
            if (confirm("Are you sure you want to delete this file?\n" + filePath)) {
                fetch({{.DeleteEndpoint}}, {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify({filePath: filePath})
                })
                .then(response => response.json())
                .then(data => {
                    if (data.success) {
                        element.closest('.file-card').classList.add('deleted');
                        element.disabled = true;
                        element.textContent = 'Deleted';
                    } else {
                        alert('Error deleting file: ' + data.message);
                    }
                })
                .catch(error => {
                    console.error('Error:', error);
                    alert('Failed to connect to backend service');
                });
            }
        }
    </script>

{{range .Groups}}
    <div class="group">
        <div class="group-header">
            <div class="group-title">Group {{.Index}} ({{.Count}} duplicates)</div>
            <div class="sha256">SHA256: {{.SHA256}}</div>
        </div>
        <div class="files-container">
{{range .Files}}
            <div class="file-card">
{{if .IsImage}}
                <img src="{{.Path}}" alt="{{.Name}}" class="file-image" onerror="this.style.display='none';">
{{else}}
                <div class="file-image" style="display:flex;align-items:center;justify-content:center;color:#999;">No preview</div>
{{end}}
                <div class="file-info">
                    <div class="file-name">{{.Name}}</div>
                    <div class="file-path">{{.Path}}</div>
                    <div class="file-time">Created: {{.Created}}</div>
                    <div class="file-size">{{.Size}}</div>
                    <button class="delete-btn" onclick="deleteFile({{.Path}}, this)">Delete File</button>
                </div>
            </div>
{{end}}
        </div>
    </div>
{{end}}
</body>
</html>
`))
