// Package report renders integrity reports for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/starford/xref/internal/integrity"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Formats lists the accepted format names.
var Formats = []string{FormatText, FormatJSON}

// Write renders r to w in the given format. An empty format means text.
func Write(w io.Writer, r *integrity.Report, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return writeText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("report: encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

func writeText(w io.Writer, r *integrity.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Documents: %d\n", r.Documents)
	fmt.Fprintf(&b, "Links:     %d\n", r.Links)
	fmt.Fprintf(&b, "Edges:     %d\n", r.Edges)

	section(&b, "Dangling links", len(r.Dangling), func() {
		for _, d := range r.Dangling {
			fmt.Fprintf(&b, "  %s:%d: %s -> %s\n", d.Source, d.Line, d.Raw, d.Resolved)
		}
	})
	section(&b, "Orphan documents", len(r.Orphans), func() {
		for _, o := range r.Orphans {
			fmt.Fprintf(&b, "  %s\n", o.Document)
		}
	})
	section(&b, "Self references", len(r.SelfReferences), func() {
		for _, s := range r.SelfReferences {
			fmt.Fprintf(&b, "  %s:%d: %s\n", s.Document, s.Line, s.Raw)
		}
	})
	section(&b, "Skipped documents", len(r.Skipped), func() {
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "  %s: %s\n", s.Path, s.Reason)
		}
	})
	if len(r.UnknownEntryPoints) > 0 {
		section(&b, "Unknown entry points", len(r.UnknownEntryPoints), func() {
			for _, e := range r.UnknownEntryPoints {
				fmt.Fprintf(&b, "  %s\n", e)
			}
		})
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title string, n int, body func()) {
	fmt.Fprintf(b, "\n%s (%d):\n", title, n)
	if n == 0 {
		b.WriteString("  none found\n")
		return
	}
	body()
}
