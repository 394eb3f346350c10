//go:build sqlite_fts5

package index

import "testing"

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents_fts`).Scan(&count); err != nil {
		t.Fatalf("documents_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	fill(t, db, sampleDocs...)

	results, err := db.Search("animations", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "b.md" {
		t.Errorf("id = %q", results[0].ID)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_ReplaceClearsOldContent(t *testing.T) {
	db := testDB(t)
	fill(t, db, sampleDocs...)
	fill(t, db, sampleDocs[2])

	results, _ := db.Search("animations", 10)
	if len(results) != 0 {
		t.Errorf("old FTS content should be gone: %+v", results)
	}
}
