package walker

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are directory names skipped during traversal, in
// addition to hidden directories.
var DefaultExcludes = []string{
	".git",
	"node_modules",
	".folio",
	".idea",
	".vscode",
	"__MACOSX",
}

// skipDir reports whether a directory subtree is skipped.
func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, excl := range DefaultExcludes {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// Filter decides which slash-separated relative paths a walk keeps. A
// pattern without a slash is also tried against the base name, so "*.jpg"
// matches at any depth.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter validates the doublestar patterns. An empty include list keeps
// every path.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
		f.include = append(f.include, p)
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
		f.exclude = append(f.exclude, p)
	}
	return f, nil
}

// Keep reports whether rel passes the filter.
func (f *Filter) Keep(rel string) bool {
	if len(f.include) > 0 && !matchesAny(rel, f.include) {
		return false
	}
	return !matchesAny(rel, f.exclude)
}

func matchesAny(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}
