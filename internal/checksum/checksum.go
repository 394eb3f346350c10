// Package checksum fingerprints document content.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of the document text.
func Sum(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters of Sum, enough to tell
// revisions apart in logs and SSE payloads.
func Short(content string) string {
	return Sum(content)[:12]
}
