// Package models defines the domain types for xref.
package models

// Document is one Markdown file of the corpus.
type Document struct {
	ID          string         `json:"id"` // slash-separated path relative to the corpus root
	Title       string         `json:"title"`
	Content     string         `json:"-"`
	Checksum    string         `json:"checksum"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
}

// DocumentMeta is the lightweight listing entry produced by storage.
type DocumentMeta struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// SkippedDocument records a file that could not be loaded.
type SkippedDocument struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// LinkKind classifies a harvested link.
type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindAngle  LinkKind = "angle" // [label](<target with spaces>)
)

// LinkReference is an internal inline link found in a Document.
type LinkReference struct {
	Source   string   `json:"source"`
	Label    string   `json:"label"`
	Raw      string   `json:"raw"`      // target text exactly as written
	Target   string   `json:"target"`   // decoded path part of Raw
	Fragment string   `json:"fragment,omitempty"`
	Resolved string   `json:"resolved"` // normalized, root-relative
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Kind     LinkKind `json:"kind"`
}

// IsSelf reports whether the reference points back at its own document.
func (l LinkReference) IsSelf() bool {
	return l.Resolved == l.Source
}
