package parser

import (
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Region is a half-open byte range [Start, Stop) of source text.
type Region struct {
	Start int
	Stop  int
}

// Regions is a sorted, non-overlapping list of byte ranges.
type Regions []Region

// Contains reports whether offset falls inside any region.
func (rs Regions) Contains(offset int) bool {
	i := sort.Search(len(rs), func(i int) bool { return rs[i].Stop > offset })
	return i < len(rs) && rs[i].Start <= offset
}

var markdown = goldmark.New()

// CodeRegions returns the byte ranges of src covered by fenced or indented
// code blocks and inline code spans. Links and headings inside them are
// example code, not structure.
func CodeRegions(src []byte) Regions {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var out Regions
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			lines := n.Lines()
			if lines.Len() > 0 {
				out = append(out, Region{Start: lines.At(0).Start, Stop: lines.At(lines.Len() - 1).Stop})
			}
			return ast.WalkSkipChildren, nil
		case ast.KindCodeSpan:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					out = append(out, Region{Start: t.Segment.Start, Stop: t.Segment.Stop})
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return merge(out)
}

func merge(rs Regions) Regions {
	if len(rs) < 2 {
		return rs
	}
	out := rs[:1]
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.Stop {
			if r.Stop > last.Stop {
				last.Stop = r.Stop
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
