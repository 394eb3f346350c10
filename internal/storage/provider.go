// Package storage defines the read-only corpus file-system abstraction.
package storage

import "github.com/starford/xref/internal/models"

// Provider is the interface for corpus file access.
type Provider interface {
	// Root returns the absolute corpus root.
	Root() string
	// List returns every file under the root whose extension is in exts.
	// Entries that cannot be visited are returned as skipped, not as errors.
	List(exts []string) ([]models.DocumentMeta, []models.SkippedDocument, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
}
