package site

import (
	"strings"

	"github.com/folio-site/folio/internal/content"
)

// SearchEntry represents a single searchable gallery.
type SearchEntry struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Summary  string `json:"summary"`
	Count    int    `json:"count"`
}

// maxSummary bounds the summary length in bytes.
const maxSummary = 200

// BuildSearchIndex lists the galleries of a catalog in document order.
// basePath prefixes every path.
func BuildSearchIndex(entries []content.Entry, basePath string) []SearchEntry {
	out := make([]SearchEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, SearchEntry{
			Path:     basePath + e.Slug + "/",
			Title:    e.Folder.Title,
			Category: e.Category,
			Summary:  summarize(e.Folder.Description),
			Count:    len(e.Folder.Images),
		})
	}
	return out
}

// summarize returns the first sentence of s, truncated to maxSummary.
func summarize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if i := strings.Index(s, ". "); i >= 0 {
		s = s[:i+1]
	}
	if len(s) > maxSummary {
		cut := strings.LastIndex(s[:maxSummary], " ")
		if cut <= 0 {
			cut = maxSummary
		}
		s = s[:cut] + "..."
	}
	return s
}

// WriteSearchIndex writes the search index as JSON to the given path.
func WriteSearchIndex(entries []SearchEntry, outputPath string) error {
	return writeJSONFile(outputPath, entries)
}
