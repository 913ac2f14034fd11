package site

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/folio-site/folio/internal/content"
)

// ErrNoLegalDoc is returned for legal documents the content does not have.
var ErrNoLegalDoc = errors.New("site: no such legal document")

// Links places a page within the site. Root is the prefix back to the
// site root, Home the link to the overview in the page's language and
// OtherHome the same page in the other language.
type Links struct {
	Root      string
	Home      string
	OtherHome string
}

// page is the template context shared by every page kind.
type page struct {
	Links
	Lang      string
	OtherLang string
	Theme     string
	Title     string
	Site      content.Site
	Doc       *content.Document
	Nav       []Category
	Hero      template.HTML
	Gallery   *Gallery
	Body      template.HTML
}

// Renderer renders portfolio pages.
type Renderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

// NewRenderer parses the page templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("site").Parse(pageTemplates)
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, md: newMarkdown()}, nil
}

func (r *Renderer) newPage(doc *content.Document, theme string, links Links) page {
	if theme == "" {
		theme = "light"
	}
	return page{
		Links:     links,
		Lang:      doc.Language,
		OtherLang: content.Other(doc.Language),
		Theme:     theme,
		Site:      doc.Site,
		Doc:       doc,
	}
}

// Index renders the overview page.
func (r *Renderer) Index(w io.Writer, doc *content.Document, catalog *content.Catalog, theme string, links Links) error {
	p := r.newPage(doc, theme, links)
	hero, err := renderParagraphs(r.md, doc.Content.Hero.Description)
	if err != nil {
		return err
	}
	p.Hero = hero
	p.Nav = BuildNav(doc, catalog, links.Root)
	return r.tmpl.ExecuteTemplate(w, "index", p)
}

// Gallery renders the page of one gallery.
func (r *Renderer) Gallery(w io.Writer, doc *content.Document, e content.Entry, theme string, links Links) error {
	p := r.newPage(doc, theme, links)
	g := newGallery(e, links.Root)
	p.Gallery = &g
	p.Title = g.Title
	return r.tmpl.ExecuteTemplate(w, "gallery", p)
}

// Legal renders the imprint or privacy document.
func (r *Renderer) Legal(w io.Writer, doc *content.Document, name, theme string, links Links) error {
	src, ok := doc.Legal.Doc(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoLegalDoc, name)
	}
	body, err := renderMarkdown(r.md, src)
	if err != nil {
		return err
	}
	p := r.newPage(doc, theme, links)
	p.Body = body
	p.Title = strings.ToUpper(name[:1]) + name[1:]
	return r.tmpl.ExecuteTemplate(w, "legal", p)
}

// NotFound renders the 404 page.
func (r *Renderer) NotFound(w io.Writer, doc *content.Document, theme string, links Links) error {
	p := r.newPage(doc, theme, links)
	p.Title = "404"
	return r.tmpl.ExecuteTemplate(w, "notfound", p)
}
