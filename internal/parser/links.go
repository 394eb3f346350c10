package parser

import (
	"iter"
	"regexp"
	"sort"
	"strings"

	"github.com/starford/xref/internal/models"
)

// linkRe matches the inline link shape [label](target). Group 1 is the
// label, which may hold one level of balanced [brackets] and may wrap across
// lines. Group 2 is an <angle-bracketed> target, group 3 a bare target that
// may hold one level of balanced parentheses. An optional "title" may follow
// the target.
var linkRe = regexp.MustCompile(
	`\[((?:[^\[\]]|\[[^\[\]]*\])*)\]` +
		`\(\s*(?:<([^<>\n]*)>|((?:[^\s()]|\([^\s()]*\))+))` +
		`(?:\s+(?:"[^"]*"|'[^']*'))?\s*\)`)

// blankLineRe finds a blank line, which ends a paragraph and so a link.
var blankLineRe = regexp.MustCompile(`\n[ \t]*\r?\n`)

// schemeRe matches an RFC 3986 scheme prefix such as https: or mailto:.
var schemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// Extractor harvests internal link references from documents.
type Extractor struct {
	// SkipCode ignores matches inside code blocks and code spans.
	SkipCode bool
}

// Links is Extractor{SkipCode: true}.Links.
func Links(doc models.Document) iter.Seq[models.LinkReference] {
	return Extractor{SkipCode: true}.Links(doc)
}

// Links returns the internal link references of doc in source order. The
// sequence is lazy and may be ranged over any number of times; each range
// re-scans doc.Content from the start. Frontmatter is not scanned.
func (e Extractor) Links(doc models.Document) iter.Seq[models.LinkReference] {
	return func(yield func(models.LinkReference) bool) {
		content := doc.Content
		var regions Regions
		if e.SkipCode {
			regions = CodeRegions([]byte(content))
		}
		lines := lineStarts(content)
		body := FrontmatterEnd(content)

		for _, m := range linkRe.FindAllStringSubmatchIndex(content[body:], -1) {
			for i := range m {
				if m[i] >= 0 {
					m[i] += body
				}
			}
			if regions.Contains(m[0]) {
				continue
			}
			if m[0] > 0 && content[m[0]-1] == '!' {
				continue
			}
			if escaped(content, m[0]) {
				continue
			}
			if blankLineRe.MatchString(content[m[0]:m[1]]) {
				continue
			}
			ref, ok := reference(doc.ID, content, m)
			if !ok {
				continue
			}
			ref.Line, ref.Column = position(lines, m[0])
			if !yield(ref) {
				return
			}
		}
	}
}

// escaped reports whether the byte at i is preceded by an odd run of
// backslashes.
func escaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// lineStarts returns the byte offset of the first byte of every line of s.
func lineStarts(s string) []int {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// position converts a byte offset into a 1-based line and byte column.
func position(starts []int, offset int) (line, column int) {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	return i + 1, offset - starts[i] + 1
}

// reference builds a LinkReference from one linkRe match, or reports false
// for targets that do not point at a corpus file.
func reference(source, content string, m []int) (models.LinkReference, bool) {
	ref := models.LinkReference{
		Source: source,
		Label:  content[m[2]:m[3]],
		Kind:   models.LinkKindInline,
	}
	switch {
	case m[4] >= 0:
		ref.Raw = strings.TrimSpace(content[m[4]:m[5]])
		ref.Kind = models.LinkKindAngle
	case m[6] >= 0:
		ref.Raw = content[m[6]:m[7]]
	}
	if ref.Raw == "" || IsExternal(ref.Raw) {
		return ref, false
	}

	p, fragment := SplitTarget(ref.Raw)
	if p == "" {
		// In-page anchor such as (#overview).
		return ref, false
	}
	ref.Target = Decode(p)
	ref.Fragment = Decode(fragment)
	ref.Resolved = Resolve(source, ref.Target)
	return ref, true
}

// IsExternal reports whether raw is an absolute URL (any URI scheme) or a
// protocol-relative //host reference.
func IsExternal(raw string) bool {
	return schemeRe.MatchString(raw) || strings.HasPrefix(raw, "//")
}

// SplitTarget cuts raw at the first '#' into path and fragment and drops any
// ?query from the path part.
func SplitTarget(raw string) (p, fragment string) {
	p, fragment, _ = strings.Cut(raw, "#")
	p, _, _ = strings.Cut(p, "?")
	return p, fragment
}
