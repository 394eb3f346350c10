// Package linkservice runs the load, extract, graph, and check pipeline and
// serves queries over the latest result.
package linkservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/xref/internal/checksum"
	"github.com/starford/xref/internal/corpus"
	"github.com/starford/xref/internal/graph"
	"github.com/starford/xref/internal/integrity"
	"github.com/starford/xref/internal/parser"
	"github.com/starford/xref/internal/storage"
)

// BuildOptions controls one pipeline run.
type BuildOptions struct {
	Extensions  []string
	Workers     int
	SkipCode    bool
	EntryPoints []string
	Logger      *slog.Logger
}

// Snapshot is the immutable result of one pipeline run.
type Snapshot struct {
	Corpus   *corpus.Corpus
	Graph    *graph.Graph
	Report   *integrity.Report
	Revision string
	BuiltAt  time.Time
}

// Build loads the corpus from store, builds its reference graph, and checks it.
func Build(ctx context.Context, store storage.Provider, opts BuildOptions) (*Snapshot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	c, err := corpus.Load(ctx, store, corpus.Options{
		Extensions: opts.Extensions,
		Workers:    opts.Workers,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	g := graph.Build(c, parser.Extractor{SkipCode: opts.SkipCode}.Links)
	logger.Debug("graph: built",
		slog.Int("nodes", len(g.Nodes())),
		slog.Int("edges", g.EdgeCount()),
		slog.Int("dangling_targets", len(g.Dangling())))

	r, err := integrity.Check(g, c, integrity.Options{EntryPoints: opts.EntryPoints})
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", c.Root, err)
	}
	for _, e := range r.UnknownEntryPoints {
		logger.Warn("integrity: entry point matches no document", slog.String("path", e))
	}

	snap := &Snapshot{
		Corpus:   c,
		Graph:    g,
		Report:   r,
		Revision: revision(c),
		BuiltAt:  time.Now(),
	}
	logger.Debug("pipeline: done",
		slog.String("revision", snap.Revision),
		slog.Duration("elapsed", time.Since(start)))
	return snap, nil
}

// revision fingerprints the corpus by document IDs and content checksums.
func revision(c *corpus.Corpus) string {
	var b strings.Builder
	for _, d := range c.Documents {
		b.WriteString(d.ID)
		b.WriteByte(0)
		b.WriteString(d.Checksum)
		b.WriteByte('\n')
	}
	return checksum.Short(b.String())
}
