// Package corpus loads a directory of Markdown files into Documents.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/starford/xref/internal/checksum"
	"github.com/starford/xref/internal/models"
	"github.com/starford/xref/internal/parser"
	"github.com/starford/xref/internal/storage"
)

// DefaultExtensions are the file extensions treated as Markdown documents.
var DefaultExtensions = []string{".md", ".markdown"}

// LoadError reports that the corpus root itself could not be opened.
type LoadError struct {
	Root string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load corpus %s: %v", e.Root, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Corpus is the immutable set of documents loaded in one run.
type Corpus struct {
	Root      string
	Documents []models.Document // sorted by ID
	Skipped   []models.SkippedDocument

	byID map[string]int
}

// New builds a Corpus from already loaded documents. Documents are sorted by ID;
// a later duplicate ID is dropped and recorded as skipped.
func New(root string, docs []models.Document, skipped []models.SkippedDocument) *Corpus {
	sorted := append([]models.Document(nil), docs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	c := &Corpus{
		Root:    root,
		Skipped: append([]models.SkippedDocument(nil), skipped...),
		byID:    make(map[string]int, len(sorted)),
	}
	for _, d := range sorted {
		if _, dup := c.byID[d.ID]; dup {
			c.Skipped = append(c.Skipped, models.SkippedDocument{Path: d.ID, Reason: "duplicate document id"})
			continue
		}
		c.byID[d.ID] = len(c.Documents)
		c.Documents = append(c.Documents, d)
	}
	sort.Slice(c.Skipped, func(i, j int) bool { return c.Skipped[i].Path < c.Skipped[j].Path })
	return c
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.Documents) }

// Has reports whether id names a loaded document.
func (c *Corpus) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Lookup returns the document with the given id.
func (c *Corpus) Lookup(id string) (models.Document, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Document{}, false
	}
	return c.Documents[i], true
}

// IDs returns all document IDs in sorted order.
func (c *Corpus) IDs() []string {
	out := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		out[i] = d.ID
	}
	return out
}

// Options controls Load.
type Options struct {
	Extensions []string
	Workers    int
	Logger     *slog.Logger
}

// Open creates the file-system provider for root, wrapping failures in a
// LoadError.
func Open(root string) (*storage.FS, error) {
	fs, err := storage.NewFS(root)
	if err != nil {
		inner := errors.Unwrap(err)
		if inner == nil {
			inner = err
		}
		return nil, &LoadError{Root: root, Err: inner}
	}
	return fs, nil
}

// Load lists the corpus files and reads them with up to opts.Workers
// goroutines. Files that cannot be read or decoded are skipped with a
// warning. The returned corpus does not depend on worker scheduling.
func Load(ctx context.Context, store storage.Provider, opts Options) (*Corpus, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metas, skipped, err := store.List(exts)
	if err != nil {
		return nil, &LoadError{Root: store.Root(), Err: err}
	}

	docs := make([]*models.Document, len(metas))
	reasons := make([]string, len(metas))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range metas {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			doc, err := loadDocument(store, m.Path)
			if err != nil {
				reasons[i] = err.Error()
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("corpus: load: %w", err)
	}

	loaded := make([]models.Document, 0, len(metas))
	for i, d := range docs {
		if d == nil {
			skipped = append(skipped, models.SkippedDocument{Path: metas[i].Path, Reason: reasons[i]})
			continue
		}
		loaded = append(loaded, *d)
	}
	for _, s := range skipped {
		logger.Warn("corpus: skipped document", slog.String("path", s.Path), slog.String("reason", s.Reason))
	}

	c := New(store.Root(), loaded, skipped)
	logger.Debug("corpus: loaded",
		slog.String("root", c.Root),
		slog.Int("documents", c.Len()),
		slog.Int("skipped", len(c.Skipped)))
	return c, nil
}

func loadDocument(store storage.Provider, id string) (*models.Document, error) {
	data, err := store.Read(id)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data, parser.BaseTitle(id))
	if err != nil {
		return nil, err
	}
	content := string(data)
	return &models.Document{
		ID:          id,
		Title:       res.Title,
		Content:     content,
		Checksum:    checksum.Sum(content),
		Frontmatter: res.Frontmatter,
	}, nil
}
