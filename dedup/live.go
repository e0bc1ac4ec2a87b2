package dedup

import (
	"os"

	"dupescan/logger"
	"dupescan/models"
)

// LiveGroups returns the duplicate groups whose members all still exist on
// disk. A group that has lost any member is dropped wholesale: once a member
// vanishes the survivors are no longer a confirmed duplicate set. A missing
// file is expected here, not an error.
func LiveGroups(groups map[string][]models.FileRecord) map[string][]models.FileRecord {
	live := make(map[string][]models.FileRecord, len(groups))

	for digest, files := range groups {
		intact := true
		for _, file := range files {
			if _, err := os.Stat(file.FilePath); err != nil {
				logger.Get().Debug().Str("path", file.FilePath).Str("sha256", digest).Msg("group member missing, dropping group")
				intact = false
				break
			}
		}
		if intact {
			live[digest] = files
		}
	}

	return live
}
