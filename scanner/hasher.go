package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// hashChunkSize is the read granularity for hashing. Files are streamed
// through the digest; the whole content is never held in memory.
const hashChunkSize = 4096

// CalculateSHA256 returns the lowercase hex SHA-256 digest of the file at
// path. Any I/O error is returned to the caller, which treats the file as
// unprocessable for this scan.
func CalculateSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			hash.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
