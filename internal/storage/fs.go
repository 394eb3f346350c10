package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/xref/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to corpus directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: open root: %w", err)
	}
	_ = f.Close()
	return &FS{root: abs}, nil
}

// Root returns the absolute corpus root.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the corpus root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes corpus root: %s", rel)
	}
	return abs, nil
}

// List walks the root and returns every file with a matching extension,
// sorted by path. Hidden directories are not descended into.
func (f *FS) List(exts []string) ([]models.DocumentMeta, []models.SkippedDocument, error) {
	var (
		out     []models.DocumentMeta
		skipped []models.SkippedDocument
	)
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		rel, _ := filepath.Rel(f.root, p)
		rel = filepath.ToSlash(rel)
		if walkErr != nil {
			if p == f.root {
				return walkErr
			}
			skipped = append(skipped, models.SkippedDocument{Path: rel, Reason: walkErr.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != f.root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !HasExtension(d.Name(), exts) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			skipped = append(skipped, models.SkippedDocument{Path: rel, Reason: err.Error()})
			return nil
		}
		out = append(out, models.DocumentMeta{Path: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("storage: list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, skipped, nil
}

// Read returns the raw bytes of a corpus file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
