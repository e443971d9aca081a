// Package cache provides incremental loading and generation caching. It
// implements content hashing for declaration sources, in-memory caching of
// parsed declarations, cross-file model dependency tracking, and a
// persistent cache for generated output.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// FileHasher computes content hashes for cache keys. Loading reads each
// declaration file once and hashes the bytes it parsed, so there is no
// separate file-hashing path.
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashContent computes a SHA-256 hash of the given content
func (fh *FileHasher) HashContent(content []byte) string {
	hasher := sha256.New()
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashString computes a SHA-256 hash of the given string
func (fh *FileHasher) HashString(content string) string {
	return fh.HashContent([]byte(content))
}

// HashStrings hashes several values into one key. Parts are separated by a
// NUL byte so adjacent values cannot collide by concatenation.
func (fh *FileHasher) HashStrings(parts ...string) string {
	hasher := sha256.New()
	for i, part := range parts {
		if i > 0 {
			hasher.Write([]byte{0})
		}
		hasher.Write([]byte(part))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
