package graph

import (
	"slices"
	"testing"

	"github.com/starford/xref/internal/corpus"
	"github.com/starford/xref/internal/models"
	"github.com/starford/xref/internal/parser"
)

func build(docs ...models.Document) *Graph {
	return Build(corpus.New("/root", docs, nil), parser.Links)
}

func TestBuild_SingleEdge(t *testing.T) {
	g := build(
		models.Document{ID: "A.md", Content: "[B](./B.md)"},
		models.Document{ID: "B.md", Content: "no links"},
	)
	edges := g.Edges()
	if len(edges) != 1 || edges[0] != (Edge{Source: "A.md", Target: "B.md"}) {
		t.Fatalf("edges = %v", edges)
	}
	if got := g.Incoming("B.md"); !slices.Equal(got, []string{"A.md"}) {
		t.Errorf("Incoming(B) = %v", got)
	}
	if got := g.Incoming("A.md"); len(got) != 0 {
		t.Errorf("Incoming(A) = %v", got)
	}
	if len(g.Dangling()) != 0 {
		t.Errorf("dangling = %v", g.Dangling())
	}
}

func TestBuild_DanglingStubsNotNodes(t *testing.T) {
	g := build(models.Document{ID: "A.md", Content: "[Missing](./NoSuchFile.md) [again](NoSuchFile.md)"})
	if g.HasNode("NoSuchFile.md") {
		t.Error("dangling target must not become a node")
	}
	if got := g.Nodes(); !slices.Equal(got, []string{"A.md"}) {
		t.Errorf("nodes = %v", got)
	}
	stubs := g.Dangling()
	if len(stubs) != 1 || len(stubs["NoSuchFile.md"]) != 2 {
		t.Errorf("dangling = %v", stubs)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d", g.EdgeCount())
	}
}

func TestBuild_DuplicateLinksOneEdge(t *testing.T) {
	g := build(
		models.Document{ID: "A.md", Content: "[B](B.md)\n[B again](./B.md#intro)"},
		models.Document{ID: "B.md"},
	)
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if len(g.References()) != 2 {
		t.Errorf("references = %v", g.References())
	}
}

func TestBuild_SelfEdgeNotIncoming(t *testing.T) {
	g := build(models.Document{ID: "A.md", Content: "[me](A.md#top)"})
	if got := g.Outgoing("A.md"); !slices.Equal(got, []string{"A.md"}) {
		t.Errorf("Outgoing = %v", got)
	}
	if got := g.Incoming("A.md"); len(got) != 0 {
		t.Errorf("Incoming = %v", got)
	}
}

func TestBuild_OrderIndependent(t *testing.T) {
	a := models.Document{ID: "a.md", Content: "[b](b.md) [c](c.md)"}
	b := models.Document{ID: "b.md", Content: "[c](c.md) [x](x.md)"}
	c := models.Document{ID: "c.md", Content: "[a](a.md)"}

	g1 := build(a, b, c)
	g2 := build(c, a, b)
	if !slices.Equal(g1.Edges(), g2.Edges()) {
		t.Errorf("edges differ: %v vs %v", g1.Edges(), g2.Edges())
	}
	if !slices.Equal(g1.References(), g2.References()) {
		t.Errorf("references differ")
	}
}
