package site

import (
	"strings"

	"github.com/folio-site/folio/internal/content"
	"github.com/folio-site/folio/internal/router"
	"github.com/folio-site/folio/internal/viewer"
)

// previewCount is the number of media shown on a folder card.
const previewCount = 3

// Category is a project category with its galleries, in document order.
type Category struct {
	Key         string
	Title       string
	Description string
	Galleries   []Gallery
}

// Gallery is a folder card or a gallery page.
type Gallery struct {
	Slug        string
	Title       string
	Description string
	Href        string
	Count       int
	Media       []MediaItem
	Preview     []MediaItem
	More        int
}

// MediaItem is one entry of a gallery as rendered.
type MediaItem struct {
	Index       int
	Src         string
	Thumb       string
	Kind        viewer.Kind
	Alt         string
	Title       string
	Description string
}

// IsVideo reports whether the item renders as a video element.
func (m MediaItem) IsVideo() bool { return m.Kind == viewer.KindVideo }

// IsEmbed reports whether the item renders as an iframe.
func (m MediaItem) IsEmbed() bool { return m.Kind == viewer.KindEmbed }

// BuildNav groups the catalog's galleries by category. basePath is the
// relative prefix back to the site root ("" or "../").
func BuildNav(doc *content.Document, catalog *content.Catalog, basePath string) []Category {
	var cats []Category
	index := make(map[string]int)
	for _, p := range doc.Content.Projects {
		index[p.Key] = len(cats)
		cats = append(cats, Category{Key: p.Key, Title: p.Project.Title, Description: p.Project.Description})
	}
	for _, e := range catalog.Entries() {
		i, ok := index[e.CategoryKey]
		if !ok {
			continue
		}
		cats[i].Galleries = append(cats[i].Galleries, newGallery(e, basePath))
	}
	return cats
}

func newGallery(e content.Entry, basePath string) Gallery {
	g := Gallery{
		Slug:        e.Slug,
		Title:       e.Folder.Title,
		Description: e.Folder.Description,
		Href:        basePath + strings.TrimPrefix(router.GalleryPath(e.Slug), "/") + "/",
		Count:       len(e.Folder.Images),
	}
	for i, img := range e.Folder.Images {
		g.Media = append(g.Media, MediaItem{
			Index:       i,
			Src:         withBase(basePath, img.URL(content.MediaBase)),
			Thumb:       withBase(basePath, thumbURL(img)),
			Kind:        img.Kind(),
			Alt:         img.Alt,
			Title:       img.Title,
			Description: img.Description,
		})
	}
	g.Preview = g.Media[:min(previewCount, len(g.Media))]
	g.More = max(g.Count-previewCount, 0)
	return g
}

// thumbURL returns the thumbnail path of an image entry, or its own URL
// for media without thumbnails.
func thumbURL(img content.Image) string {
	if img.Kind() != viewer.KindImage || strings.Contains(img.Src, "://") {
		return img.URL(content.MediaBase)
	}
	return img.URL(ThumbnailBase)
}

func withBase(basePath, u string) string {
	if strings.Contains(u, "://") {
		return u
	}
	return basePath + u
}

// ThumbnailBase is the path below which thumbnails mirror the media tree.
const ThumbnailBase = "site/thumbnails"
