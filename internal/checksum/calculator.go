package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// algorithmPrefix tags file checksums with the hash algorithm so the format
// can evolve without ambiguity.
const algorithmPrefix = "sha256:"

// Calculator is an interface for computing checksums.
// This abstraction allows for different checksum algorithms.
type Calculator interface {
	// CalculateRaw computes a checksum of in-memory content.
	CalculateRaw(content []byte) string

	// CalculateFile computes a streaming checksum of a file, prefixed with
	// the algorithm name ("sha256:...").
	CalculateFile(path string) (string, error)
}

// SHA256 implements checksum calculation using SHA-256.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple
// goroutines.
type SHA256 struct{}

var _ Calculator = SHA256{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content as a bare hex digest.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateFile computes SHA-256 of the file at path without loading it
// into memory, returning "sha256:<hex digest>".
func (c SHA256) CalculateFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s for checksum: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}

	return algorithmPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

// Matches reports whether two checksum strings refer to the same digest,
// tolerating a missing algorithm prefix on either side.
func Matches(a, b string) bool {
	return strings.TrimPrefix(a, algorithmPrefix) == strings.TrimPrefix(b, algorithmPrefix)
}
