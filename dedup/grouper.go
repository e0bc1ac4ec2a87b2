package dedup

import (
	"dupescan/models"
)

// FindDuplicates partitions records by digest and keeps only the digests with
// two or more members. Records without a digest are ignored. The grouping
// depends only on membership, never on processing order.
func FindDuplicates(records []models.FileRecord) map[string][]models.FileRecord {
	byDigest := make(map[string][]models.FileRecord)
	for _, record := range records {
		if !record.HasDigest() {
			continue
		}
		byDigest[*record.SHA256] = append(byDigest[*record.SHA256], record)
	}

	for digest, files := range byDigest {
		if len(files) < 2 {
			delete(byDigest, digest)
		}
	}

	return byDigest
}
