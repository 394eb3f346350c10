package corpus

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/xref/internal/models"
	"github.com/starford/xref/internal/testutil"
)

func TestLoad(t *testing.T) {
	_, store := testutil.TestStore(t, map[string]string{
		"Meet SwiftData.md":           "# Meet SwiftData\n[x](x.md)\n",
		"sessions/Keynote.md":         "no heading\n",
		"sessions/Platforms.markdown": "---\ntitle: State of the Union\n---\n# Platforms\n",
		"notes.txt":                   "ignored",
	})

	c, err := Load(context.Background(), store, Options{Workers: 2, Logger: testutil.Logger()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3: %v", c.Len(), c.IDs())
	}
	want := map[string]string{
		"Meet SwiftData.md":           "Meet SwiftData",
		"sessions/Keynote.md":         "Keynote",
		"sessions/Platforms.markdown": "State of the Union",
	}
	for id, title := range want {
		d, ok := c.Lookup(id)
		if !ok {
			t.Errorf("missing %q", id)
			continue
		}
		if d.Title != title {
			t.Errorf("%s title = %q, want %q", id, d.Title, title)
		}
		if d.Checksum == "" {
			t.Errorf("%s has no checksum", id)
		}
	}
	ids := c.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("ids not sorted: %v", ids)
		}
	}
}

func TestLoad_SkipsInvalidEncoding(t *testing.T) {
	dir, store := testutil.TestStore(t, map[string]string{
		"good.md": "# Good\n",
	})
	testutil.WriteFile(t, dir, "bad.md", string([]byte{0xff, 0xfe, 0xfd}))

	c, err := Load(context.Background(), store, Options{Logger: testutil.Logger()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 1 || !c.Has("good.md") {
		t.Fatalf("documents = %v", c.IDs())
	}
	if len(c.Skipped) != 1 || c.Skipped[0].Path != "bad.md" {
		t.Fatalf("skipped = %v", c.Skipped)
	}
}

func TestLoad_DeterministicAcrossWorkers(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files[name+".md"] = "# " + name + "\n"
	}
	_, store := testutil.TestStore(t, files)

	one, err := Load(context.Background(), store, Options{Workers: 1, Logger: testutil.Logger()})
	if err != nil {
		t.Fatal(err)
	}
	many, err := Load(context.Background(), store, Options{Workers: 8, Logger: testutil.Logger()})
	if err != nil {
		t.Fatal(err)
	}
	a, b := one.IDs(), many.IDs()
	if len(a) != len(b) {
		t.Fatalf("%v != %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("%v != %v", a, b)
		}
	}
}

func TestLoad_Cancelled(t *testing.T) {
	_, store := testutil.TestStore(t, map[string]string{"a.md": "# A\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, store, Options{Logger: testutil.Logger()}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestOpen_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	_, err := Open(root)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("err = %v, want *LoadError", err)
	}
	if loadErr.Root != root {
		t.Errorf("Root = %q, want %q", loadErr.Root, root)
	}
}

func TestNew_DuplicateIDs(t *testing.T) {
	c := New("/r", []models.Document{{ID: "a.md"}, {ID: "a.md"}, {ID: "b.md"}}, nil)
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if len(c.Skipped) != 1 {
		t.Errorf("skipped = %v", c.Skipped)
	}
}
