package index

import (
	"errors"
	"os"
	"slices"
	"testing"

	"github.com/starford/xref/internal/apperr"
	"github.com/starford/xref/internal/corpus"
	"github.com/starford/xref/internal/graph"
	"github.com/starford/xref/internal/integrity"
	"github.com/starford/xref/internal/models"
	"github.com/starford/xref/internal/parser"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "xref-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func fill(t *testing.T, db *DB, docs ...models.Document) {
	t.Helper()
	c := corpus.New("/root", docs, []models.SkippedDocument{{Path: "bad.md", Reason: "invalid utf-8"}})
	g := graph.Build(c, parser.Links)
	r, err := integrity.Check(g, c, integrity.Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if err := db.Replace(c, g, r); err != nil {
		t.Fatalf("Replace: %v", err)
	}
}

var sampleDocs = []models.Document{
	{ID: "a.md", Title: "Meet SwiftData", Content: "[b](b.md) [c](c.md) [gone](gone.md) [me](a.md#x)"},
	{ID: "b.md", Title: "Explore SwiftUI animation", Content: "[c](./c.md) spring animations"},
	{ID: "c.md", Title: "Keynote", Content: "[a](a.md)"},
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"documents", "links", "findings"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestReplaceAndBacklinks(t *testing.T) {
	db := testDB(t)
	fill(t, db, sampleDocs...)

	bl, err := db.Backlinks("c.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if !slices.Equal(bl, []string{"a.md", "b.md"}) {
		t.Errorf("backlinks = %v", bl)
	}
	// Self-links do not count as backlinks.
	bl, _ = db.Backlinks("a.md")
	if !slices.Equal(bl, []string{"c.md"}) {
		t.Errorf("backlinks(a) = %v", bl)
	}

	out, err := db.Outgoing("a.md")
	if err != nil {
		t.Fatalf("Outgoing: %v", err)
	}
	if !slices.Equal(out, []string{"a.md", "b.md", "c.md"}) {
		t.Errorf("outgoing = %v", out)
	}
}

func TestDanglingAndFindings(t *testing.T) {
	db := testDB(t)
	fill(t, db, sampleDocs...)

	dl, err := db.DanglingLinks("")
	if err != nil {
		t.Fatalf("DanglingLinks: %v", err)
	}
	if len(dl) != 1 || dl[0].Target != "gone.md" || dl[0].Source != "a.md" || !dl[0].Dangling {
		t.Errorf("dangling = %+v", dl)
	}
	if dl, _ := db.DanglingLinks("b.md"); len(dl) != 0 {
		t.Errorf("dangling(b) = %+v", dl)
	}

	self, _ := db.Findings(FindingSelfReference)
	if len(self) != 1 || self[0].Document != "a.md" {
		t.Errorf("self = %+v", self)
	}
	skipped, _ := db.Findings(FindingSkipped)
	if len(skipped) != 1 || skipped[0].Document != "bad.md" {
		t.Errorf("skipped = %+v", skipped)
	}
}

func TestReplaceDropsPreviousSnapshot(t *testing.T) {
	db := testDB(t)
	fill(t, db, sampleDocs...)
	fill(t, db, models.Document{ID: "only.md", Title: "Only"})

	docs, err := db.Documents()
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "only.md" {
		t.Errorf("documents = %+v", docs)
	}
	bl, _ := db.Backlinks("c.md")
	if len(bl) != 0 {
		t.Errorf("stale backlinks = %v", bl)
	}
}

func TestGetDocument(t *testing.T) {
	db := testDB(t)
	fill(t, db, sampleDocs...)

	d, err := db.GetDocument("b.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if d.Title != "Explore SwiftUI animation" {
		t.Errorf("title = %q", d.Title)
	}
	if _, err := db.GetDocument("nope.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	fill(t, db, sampleDocs...)

	results, err := db.Search("spring", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "b.md" {
		t.Errorf("results = %+v", results)
	}
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(MemoryDSN)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	fill(t, db, sampleDocs...)
	docs, err := db.Documents()
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("len = %d, want 3", len(docs))
	}
}
