// Package integrity checks a reference graph for dangling links, orphan
// documents, and self-references. Findings are data; Check only fails on
// an empty corpus.
package integrity

import (
	"sort"

	"github.com/starford/xref/internal/apperr"
	"github.com/starford/xref/internal/corpus"
	"github.com/starford/xref/internal/graph"
	"github.com/starford/xref/internal/models"
	"github.com/starford/xref/internal/parser"
)

// Options controls Check.
type Options struct {
	// EntryPoints are documents exempt from the orphan check, e.g. a table
	// of contents.
	EntryPoints []string
}

// DanglingLink is a reference whose target is not a loaded document.
type DanglingLink struct {
	Source   string `json:"source"`
	Raw      string `json:"raw"`
	Resolved string `json:"resolved"`
	Fragment string `json:"fragment,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Orphan is a document nothing else links to.
type Orphan struct {
	Document string `json:"document"`
	Title    string `json:"title"`
}

// SelfReference is a link from a document to itself.
type SelfReference struct {
	Document string `json:"document"`
	Raw      string `json:"raw"`
	Fragment string `json:"fragment,omitempty"`
	Line     int    `json:"line"`
}

// Report is the outcome of an integrity check.
type Report struct {
	Documents          int                      `json:"documents"`
	Links              int                      `json:"links"`
	Edges              int                      `json:"edges"`
	Dangling           []DanglingLink           `json:"dangling"`
	Orphans            []Orphan                 `json:"orphans"`
	SelfReferences     []SelfReference          `json:"self_references"`
	Skipped            []models.SkippedDocument `json:"skipped"`
	EntryPoints        []string                 `json:"entry_points"`
	UnknownEntryPoints []string                 `json:"unknown_entry_points,omitempty"`
}

// HasDangling reports whether any dangling link was found.
func (r *Report) HasDangling() bool {
	return len(r.Dangling) > 0
}

// Check computes the integrity report of g over c.
func Check(g *graph.Graph, c *corpus.Corpus, opts Options) (*Report, error) {
	if c == nil || c.Len() == 0 {
		return nil, apperr.ErrEmptyCorpus
	}

	refs := g.References()
	r := &Report{
		Documents:      c.Len(),
		Links:          len(refs),
		Edges:          g.EdgeCount(),
		Dangling:       []DanglingLink{},
		Orphans:        []Orphan{},
		SelfReferences: []SelfReference{},
		Skipped:        append([]models.SkippedDocument{}, c.Skipped...),
		EntryPoints:    []string{},
	}

	entries := make(map[string]struct{}, len(opts.EntryPoints))
	for _, e := range opts.EntryPoints {
		id := parser.NormalizeID(e)
		if _, dup := entries[id]; dup {
			continue
		}
		entries[id] = struct{}{}
		if c.Has(id) {
			r.EntryPoints = append(r.EntryPoints, id)
		} else {
			r.UnknownEntryPoints = append(r.UnknownEntryPoints, id)
		}
	}
	sort.Strings(r.EntryPoints)
	sort.Strings(r.UnknownEntryPoints)

	for _, ref := range refs {
		switch {
		case !c.Has(ref.Resolved):
			r.Dangling = append(r.Dangling, DanglingLink{
				Source:   ref.Source,
				Raw:      ref.Raw,
				Resolved: ref.Resolved,
				Fragment: ref.Fragment,
				Line:     ref.Line,
				Column:   ref.Column,
			})
		case ref.IsSelf():
			r.SelfReferences = append(r.SelfReferences, SelfReference{
				Document: ref.Source,
				Raw:      ref.Raw,
				Fragment: ref.Fragment,
				Line:     ref.Line,
			})
		}
	}

	for _, doc := range c.Documents {
		if _, ok := entries[doc.ID]; ok {
			continue
		}
		if len(g.Incoming(doc.ID)) == 0 {
			r.Orphans = append(r.Orphans, Orphan{Document: doc.ID, Title: doc.Title})
		}
	}

	return r, nil
}
