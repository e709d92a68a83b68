package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

type SourceFile struct {
	Path        string
	Data        []byte
	ContentHash string
}

func ReadSource(path string) (SourceFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, err
	}
	return SourceFile{
		Path:        path,
		Data:        raw,
		ContentHash: HashBytes(raw),
	}, nil
}

func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
