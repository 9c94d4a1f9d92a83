package utils

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"lukechampine.com/blake3"
)

// CalculateFileFingerprint hashes a file's contents with blake3-256. The
// fingerprint identifies an input across runs regardless of its path.
func CalculateFileFingerprint(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Fingerprint(file)
}

// Fingerprint hashes everything read from r.
func Fingerprint(r io.Reader) (string, error) {
	hash := blake3.New(32, nil)
	if _, err := io.Copy(hash, r); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
