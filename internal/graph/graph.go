// Package graph builds the directed document reference graph.
package graph

import (
	"iter"
	"sort"

	"github.com/starford/xref/internal/corpus"
	"github.com/starford/xref/internal/models"
)

// LinkFunc yields the link references of one document.
type LinkFunc func(models.Document) iter.Seq[models.LinkReference]

// Edge is a directed document to document reference.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the reference graph of one corpus. Its node set is exactly the
// corpus document IDs. Targets that do not resolve to a document are kept
// as stubs in dangling and never become nodes.
type Graph struct {
	nodes    []string
	nodeSet  map[string]struct{}
	out      map[string]map[string]struct{}
	in       map[string]map[string]struct{}
	dangling map[string][]models.LinkReference
	refs     []models.LinkReference
}

// Build makes one pass over every document of c and its links.
func Build(c *corpus.Corpus, links LinkFunc) *Graph {
	g := &Graph{
		nodes:    c.IDs(),
		nodeSet:  make(map[string]struct{}, c.Len()),
		out:      make(map[string]map[string]struct{}),
		in:       make(map[string]map[string]struct{}),
		dangling: make(map[string][]models.LinkReference),
	}
	for _, id := range g.nodes {
		g.nodeSet[id] = struct{}{}
	}

	for _, doc := range c.Documents {
		for ref := range links(doc) {
			g.refs = append(g.refs, ref)
			if _, ok := g.nodeSet[ref.Resolved]; !ok {
				g.dangling[ref.Resolved] = append(g.dangling[ref.Resolved], ref)
				continue
			}
			addEdge(g.out, ref.Source, ref.Resolved)
			addEdge(g.in, ref.Resolved, ref.Source)
		}
	}

	sort.SliceStable(g.refs, func(i, j int) bool {
		a, b := g.refs[i], g.refs[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return g
}

func addEdge(m map[string]map[string]struct{}, from, to string) {
	set, ok := m[from]
	if !ok {
		set = make(map[string]struct{})
		m[from] = set
	}
	set[to] = struct{}{}
}

// Nodes returns the document IDs in sorted order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// HasNode reports whether id is a document of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeSet[id]
	return ok
}

// Outgoing returns the sorted documents id links to, itself included when
// it links to itself.
func (g *Graph) Outgoing(id string) []string {
	return sortedKeys(g.out[id], "")
}

// Incoming returns the sorted documents linking to id, excluding id itself.
func (g *Graph) Incoming(id string) []string {
	return sortedKeys(g.in[id], id)
}

// Edges returns every edge sorted by source, then target.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, src := range g.nodes {
		for _, dst := range g.Outgoing(src) {
			out = append(out, Edge{Source: src, Target: dst})
		}
	}
	return out
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, set := range g.out {
		n += len(set)
	}
	return n
}

// References returns every extracted reference ordered by source, line, and
// column.
func (g *Graph) References() []models.LinkReference {
	return append([]models.LinkReference(nil), g.refs...)
}

// Dangling returns the unresolved stub targets and the references naming them.
func (g *Graph) Dangling() map[string][]models.LinkReference {
	out := make(map[string][]models.LinkReference, len(g.dangling))
	for k, v := range g.dangling {
		out[k] = append([]models.LinkReference(nil), v...)
	}
	return out
}

func sortedKeys(set map[string]struct{}, exclude string) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k != exclude {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
