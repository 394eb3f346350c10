package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/starford/xref/internal/integrity"
)

func sample() *integrity.Report {
	return &integrity.Report{
		Documents: 2,
		Links:     2,
		Edges:     1,
		Dangling: []integrity.DanglingLink{
			{Source: "A.md", Raw: "./NoSuchFile.md", Resolved: "NoSuchFile.md", Line: 3},
		},
		Orphans:        []integrity.Orphan{{Document: "A.md"}},
		SelfReferences: []integrity.SelfReference{},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), FormatText); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Documents: 2",
		"Dangling links (1):",
		"A.md:3: ./NoSuchFile.md -> NoSuchFile.md",
		"Orphan documents (1):",
		"Self references (0):\n  none found",
		"Skipped documents (0):\n  none found",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Unknown entry points") {
		t.Error("unknown entry points section should be omitted when empty")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["documents"].(float64) != 2 {
		t.Errorf("documents = %v", got["documents"])
	}
	if d := got["dangling"].([]any); len(d) != 1 {
		t.Errorf("dangling = %v", d)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, sample(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
