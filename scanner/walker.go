package scanner

import (
	"os"
	"path/filepath"

	"dupescan/logger"
)

// CollectFiles enumerates every regular file beneath the given roots. A root
// that does not exist is logged and skipped; unreadable entries are skipped
// the same way. Traversal order is unspecified and consumers must not depend
// on it. filepath.Walk does not follow symlinked directories, so symlink
// cycles cannot occur.
func CollectFiles(roots []string) []string {
	var files []string

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			logger.Get().Warn().Err(err).Str("root", root).Msg("directory does not exist, skipping")
			continue
		}

		logger.Get().Info().Str("root", root).Msg("scanning directory")
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				logger.Get().Warn().Err(err).Str("path", path).Msg("cannot access path")
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			logger.Get().Warn().Err(err).Str("root", root).Msg("walk ended with error")
		}
	}

	return files
}
