//go:build !linux

package scanner

import (
	"os"
	"time"
)

// creationTime falls back to the modification time on platforms where the
// birth time is not exposed through a portable call.
func creationTime(_ string, info os.FileInfo) time.Time {
	return info.ModTime()
}
