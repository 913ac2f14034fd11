package offline

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Class is the request category that selects a caching strategy.
type Class int

const (
	ClassStatic Class = iota
	ClassDocument
	ClassImage
	ClassOther
)

func (c Class) String() string {
	switch c {
	case ClassStatic:
		return "static"
	case ClassDocument:
		return "document"
	case ClassImage:
		return "image"
	}
	return "other"
}

var staticExtensions = map[string]bool{
	".css":         true,
	".js":          true,
	".woff2":       true,
	".woff":        true,
	".webmanifest": true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".ico":  true,
}

// DefaultStaticGlobs marks everything below an icons directory as static.
var DefaultStaticGlobs = []string{"**/icons/**"}

// Classifier sorts requests into classes. The first matching rule wins:
// static assets, then HTML and data, then images, then everything else.
type Classifier struct {
	globs []string
}

// NewClassifier validates the doublestar patterns that additionally mark a
// path as static.
func NewClassifier(globs []string) (*Classifier, error) {
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid static glob %q", g)
		}
	}
	return &Classifier{globs: append([]string(nil), globs...)}, nil
}

// Classify returns the class of req.
func (c *Classifier) Classify(req *http.Request) Class {
	p := req.URL.Path
	ext := strings.ToLower(path.Ext(p))

	switch {
	case staticExtensions[ext] || c.matchesGlob(p):
		return ClassStatic
	case IsHTML(req) || ext == ".json" || strings.Contains(p, "/api/"):
		return ClassDocument
	case strings.Contains(req.Header.Get("Accept"), "image") || imageExtensions[ext]:
		return ClassImage
	}
	return ClassOther
}

func (c *Classifier) matchesGlob(p string) bool {
	rel := strings.TrimPrefix(p, "/")
	for _, g := range c.globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// IsHTML reports whether req asks for an HTML document.
func IsHTML(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}
