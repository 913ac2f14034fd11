// Package router maps page paths to galleries and keeps the explicit
// navigation history of a browsing session.
package router

import (
	"errors"
	"strings"

	"github.com/folio-site/folio/internal/content"
)

// ErrNotFound is returned for paths naming no known gallery.
var ErrNotFound = errors.New("router: not found")

// Root is the path of the gallery overview.
const Root = "/"

// Route is a resolved page path. Gallery is false for the overview.
type Route struct {
	Path    string
	Gallery bool
	Entry   content.Entry
}

// Resolve maps path to a route. Trailing slashes and an index.html suffix
// are ignored. Paths with more than one segment are not galleries.
func Resolve(path string, catalog *content.Catalog) (Route, error) {
	p := strings.TrimSuffix(path, "index.html")
	p = strings.Trim(p, "/")
	if p == "" {
		return Route{Path: Root}, nil
	}
	if strings.Contains(p, "/") || catalog == nil {
		return Route{}, ErrNotFound
	}
	e, ok := catalog.Lookup(p)
	if !ok {
		return Route{}, ErrNotFound
	}
	return Route{Path: GalleryPath(e.Slug), Gallery: true, Entry: e}, nil
}

// GalleryPath returns the deep link of a gallery.
func GalleryPath(slug string) string {
	return Root + slug
}

// State is the navigation history of one session. It satisfies
// viewer.History.
type State struct {
	Stack []string `json:"stack"`
}

// Current returns the path on top of the history, Root when empty.
func (s *State) Current() string {
	if len(s.Stack) == 0 {
		return Root
	}
	return s.Stack[len(s.Stack)-1]
}

// OpenGallery pushes the gallery path unless it is already current.
func (s *State) OpenGallery(slug string) string {
	p := GalleryPath(slug)
	if s.Current() != p {
		s.Stack = append(s.Stack, p)
	}
	return p
}

// CloseGallery pops back to the overview.
func (s *State) CloseGallery() string {
	for len(s.Stack) > 0 && s.Current() != Root {
		s.Stack = s.Stack[:len(s.Stack)-1]
	}
	return Root
}
