// Package parser extracts frontmatter, titles, and inline links from Markdown content.
package parser

import (
	"bytes"
	"errors"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrInvalidEncoding is returned for content that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("parser: content is not valid UTF-8")

var headingRe = regexp.MustCompile(`^ {0,3}#{1,6}[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Title       string
}

// Parse extracts frontmatter, body, and title from raw Markdown bytes.
// fallbackTitle is used when neither frontmatter nor a heading supplies one.
func Parse(data []byte, fallbackTitle string) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	fm, body := splitFrontmatter(data)
	title := deriveTitle(fm, body)
	if title == "" {
		title = fallbackTitle
	}
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       title,
	}, nil
}

// BaseTitle returns the file name of id without its extension.
func BaseTitle(id string) string {
	base := path.Base(id)
	return strings.TrimSuffix(base, path.Ext(base))
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	fm, end := frontmatter(data)
	if end == 0 {
		return nil, string(data)
	}
	return fm, strings.TrimLeft(string(data[end:]), "\n\r")
}

// FrontmatterEnd returns the byte offset just past the closing --- of a
// leading YAML frontmatter block, or 0 when content has none.
func FrontmatterEnd(content string) int {
	_, end := frontmatter([]byte(content))
	return end
}

// frontmatter decodes a leading frontmatter block and returns it with the
// offset where the body starts. end is 0 when there is no valid block.
func frontmatter(data []byte) (fm map[string]any, end int) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, 0
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, 0
	}

	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		// Invalid YAML: a horizontal rule, not frontmatter.
		return nil, 0
	}

	lead := len(data) - len(trimmed)
	return fm, lead + len(delim) + idx + 1 + len(delim)
}

// deriveTitle returns the frontmatter "title" if present, otherwise the text
// of the first ATX heading outside code blocks, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	regions := CodeRegions([]byte(body))
	offset := 0
	for _, line := range strings.SplitAfter(body, "\n") {
		start := offset
		offset += len(line)
		if regions.Contains(start) {
			continue
		}
		if m := headingRe.FindStringSubmatch(strings.TrimRight(line, "\r\n")); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
