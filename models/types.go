package models

// CacheKey identifies a file across scans. Size is part of the key so that a
// content change that alters the size invalidates the cached digest without
// re-hashing every file on every run. A same-size content change is invisible
// to the cache; that staleness window is accepted.
type CacheKey struct {
	Path string
	Size int64
}

// FileRecord is one physical file observed during a scan. SHA256 is nil when
// hashing failed; such records are never persisted.
type FileRecord struct {
	FileName     string  `json:"filename"`
	FilePath     string  `json:"filepath"`
	CreationTime string  `json:"creation_time"`
	SizeBytes    int64   `json:"file_size"`
	SHA256       *string `json:"sha256,omitempty"`
}

// Key returns the cache key for this record.
func (r FileRecord) Key() CacheKey {
	return CacheKey{Path: r.FilePath, Size: r.SizeBytes}
}

// HasDigest reports whether the record carries a usable digest.
func (r FileRecord) HasDigest() bool {
	return r.SHA256 != nil && *r.SHA256 != ""
}
