package content

import (
	"strconv"

	"github.com/sahilm/fuzzy"
)

// Entry is one gallery of a document.
type Entry struct {
	Slug        string `json:"slug"`
	Category    string `json:"category"`
	CategoryKey string `json:"category_key"`
	FolderIndex int    `json:"folder_index"`
	Folder      Folder `json:"folder"`
}

// Catalog indexes the galleries of a document by slug.
type Catalog struct {
	entries []Entry
	bySlug  map[string]int
}

// NewCatalog builds the catalog of doc. Colliding slugs get a numeric
// suffix in document order.
func NewCatalog(doc *Document) *Catalog {
	c := &Catalog{bySlug: make(map[string]int)}
	if doc == nil {
		return c
	}
	for _, p := range doc.Content.Projects {
		for i, f := range p.Project.Folders {
			slug := Slug(f.Title)
			if slug == "" {
				slug = Slug(p.Key) + "-" + strconv.Itoa(i+1)
			}
			base := slug
			for n := 2; ; n++ {
				if _, taken := c.bySlug[slug]; !taken {
					break
				}
				slug = base + "-" + strconv.Itoa(n)
			}
			c.bySlug[slug] = len(c.entries)
			c.entries = append(c.entries, Entry{
				Slug:        slug,
				Category:    p.Project.Title,
				CategoryKey: p.Key,
				FolderIndex: i,
				Folder:      f,
			})
		}
	}
	return c
}

// Entries returns all galleries in document order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Lookup finds a gallery by slug.
func (c *Catalog) Lookup(slug string) (Entry, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// SlugFor returns the slug of the folder at index within a category.
func (c *Catalog) SlugFor(categoryKey string, index int) (string, bool) {
	for _, e := range c.entries {
		if e.CategoryKey == categoryKey && e.FolderIndex == index {
			return e.Slug, true
		}
	}
	return "", false
}

// Search fuzzy-matches query against gallery titles and descriptions,
// best match first.
func (c *Catalog) Search(query string) []Entry {
	if query == "" {
		return nil
	}
	matches := fuzzy.FindFrom(query, searchSource(c.entries))
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, c.entries[m.Index])
	}
	return out
}

type searchSource []Entry

func (s searchSource) String(i int) string {
	e := s[i]
	return e.Folder.Title + " " + e.Category + " " + e.Folder.Description
}

func (s searchSource) Len() int { return len(s) }
