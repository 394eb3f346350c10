package storage

import (
	"os"
	"path/filepath"
	"testing"
)

var mdExts = []string{".md", ".markdown"}

func tempCorpus(t *testing.T, files map[string]string) *FS {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestRead(t *testing.T) {
	s := tempCorpus(t, map[string]string{"note.md": "# Hello\nWorld\n"})
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Hello\nWorld\n" {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadNested(t *testing.T) {
	s := tempCorpus(t, map[string]string{"a/b/c.md": "deep"})
	got, err := s.Read("a/b/c.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestList(t *testing.T) {
	s := tempCorpus(t, map[string]string{
		"b.md":            "b",
		"a.md":            "a",
		"sub/c.MARKDOWN":  "c",
		"readme.txt":      "not md",
		".git/HEAD.md":    "hidden",
		"Keynote 2023.md": "k",
	})

	items, skipped, err := s.List(mdExts)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %v", skipped)
	}
	want := []string{"Keynote 2023.md", "a.md", "b.md", "sub/c.MARKDOWN"}
	if len(items) != len(want) {
		t.Fatalf("items = %v, want %v", items, want)
	}
	for i, w := range want {
		if items[i].Path != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Path, w)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempCorpus(t, nil)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
	}
}

func TestHasExtension(t *testing.T) {
	cases := map[string]bool{
		"a.md":       true,
		"A.MD":       true,
		"a.markdown": true,
		"a.txt":      false,
		"md":         false,
		"a.md.bak":   false,
	}
	for name, want := range cases {
		if got := HasExtension(name, mdExts); got != want {
			t.Errorf("HasExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "xref-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
