package scanner

import (
	"os"

	"dupescan/logger"
	"dupescan/models"
)

// TimeFormat is the timestamp layout persisted by both storage backends.
const TimeFormat = "2006-01-02 15:04:05"

// ProcessFile produces the metadata record for one file. When the (path,
// size) pair is present in the cache with a valid digest, the cached record
// is returned verbatim and no hashing happens; this is the sole incremental
// mechanism. A nil record means the file could not be processed and is
// omitted from this scan. The second return value reports a cache hit.
func ProcessFile(path string, cache map[models.CacheKey]models.FileRecord) (*models.FileRecord, bool) {
	info, err := os.Stat(path)
	if err != nil {
		logger.Get().Warn().Err(err).Str("path", path).Msg("stat failed, skipping file")
		return nil, false
	}

	key := models.CacheKey{Path: path, Size: info.Size()}
	if cached, ok := cache[key]; ok && cached.HasDigest() {
		return &cached, true
	}

	digest, err := CalculateSHA256(path)
	if err != nil {
		logger.Get().Warn().Err(err).Str("path", path).Msg("hashing failed, skipping file")
		return nil, false
	}

	return &models.FileRecord{
		FileName:     info.Name(),
		FilePath:     path,
		CreationTime: creationTime(path, info).Format(TimeFormat),
		SizeBytes:    info.Size(),
		SHA256:       &digest,
	}, false
}
