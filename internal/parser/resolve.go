package parser

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Decode percent-decodes a link path (%20 becomes a space). Text with an
// invalid escape is returned unchanged.
func Decode(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// Resolve maps a decoded link target found in the document source to a
// canonical corpus path. Targets starting with / are relative to the corpus
// root; everything else, including a bare file name, is relative to the
// directory of source. The result is cleaned and slash-separated. A target
// that climbs above the root keeps its leading ../ and so never matches a
// document.
func Resolve(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimLeft(target, "/"))
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// NormalizeID canonicalizes a user-supplied corpus path, for example a
// --entry flag value, into document ID form.
func NormalizeID(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	return path.Clean(strings.TrimLeft(p, "/"))
}
