package site

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/content"
	"github.com/folio-site/folio/internal/prefs"
	"github.com/folio-site/folio/internal/router"
)

// Handler serves the portfolio pages from the live content directory.
type Handler struct {
	loader   *content.Loader
	prefs    *prefs.Store
	renderer *Renderer
	logger   *zap.Logger
	started  time.Time
}

// NewHandler creates a Handler. store may be nil, in which case only the
// request headers decide language and theme.
func NewHandler(loader *content.Loader, store *prefs.Store, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{loader: loader, prefs: store, renderer: r, logger: logger, started: time.Now()}, nil
}

// RegisterRoutes mounts the page, content and static routes on the given
// router.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.handleIndex)
	r.Get("/index.html", h.handleIndex)
	r.Get("/manifest.webmanifest", h.handleManifest)
	r.Get("/api/content/{lang}", h.handleContent)
	r.Get("/api/search", h.handleSearch)
	r.Get("/legal/{doc}", h.handleLegal)
	r.Get("/site/*", h.handleStatic)
	r.Get("/{slug}", h.handleGallery)
	r.Get("/{slug}/", h.handleGallery)
}

// preferences returns the language and theme for r. A valid lang query
// parameter wins over everything else.
func (h *Handler) preferences(r *http.Request) prefs.Preferences {
	var p prefs.Preferences
	if h.prefs != nil {
		var err error
		if p, err = h.prefs.Effective(r); err != nil {
			h.logger.Warn("site: reading preferences", zap.Error(err))
			p = prefs.Resolve(prefs.Preferences{}, r)
		}
	} else {
		p = prefs.Resolve(prefs.Preferences{}, r)
	}
	if lang, err := content.ParseLanguage(r.URL.Query().Get("lang")); err == nil {
		p.Language = lang
	}
	return p
}

func langLink(p, lang string) string {
	return p + "?lang=" + lang
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := h.preferences(r)
	doc := h.loader.Document(p.Language)
	links := Links{Root: "/", Home: langLink("/", doc.Language), OtherHome: langLink("/", content.Other(doc.Language))}
	h.render(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.renderer.Index(buf, doc, h.loader.Catalog(doc.Language), p.Theme, links)
	})
}

func (h *Handler) handleGallery(w http.ResponseWriter, r *http.Request) {
	p := h.preferences(r)
	doc := h.loader.Document(p.Language)
	route, err := router.Resolve(r.URL.Path, h.loader.Catalog(doc.Language))
	if err != nil || !route.Gallery {
		h.notFound(w, r)
		return
	}

	other := content.Other(doc.Language)
	otherHome := langLink("/", other)
	if slug, ok := h.loader.Catalog(other).SlugFor(route.Entry.CategoryKey, route.Entry.FolderIndex); ok {
		otherHome = langLink(router.GalleryPath(slug), other)
	}
	links := Links{Root: "/", Home: langLink("/", doc.Language), OtherHome: otherHome}
	h.render(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.renderer.Gallery(buf, doc, route.Entry, p.Theme, links)
	})
}

func (h *Handler) handleLegal(w http.ResponseWriter, r *http.Request) {
	p := h.preferences(r)
	doc := h.loader.Document(p.Language)
	name := chi.URLParam(r, "doc")
	links := Links{Root: "/", Home: langLink("/", doc.Language), OtherHome: langLink(r.URL.Path, content.Other(doc.Language))}

	var buf bytes.Buffer
	err := h.renderer.Legal(&buf, doc, name, p.Theme, links)
	if errors.Is(err, ErrNoLegalDoc) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("site: rendering legal page", zap.String("doc", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	p := h.preferences(r)
	doc := h.loader.Document(p.Language)
	links := Links{Root: "/", Home: langLink("/", doc.Language), OtherHome: langLink("/", content.Other(doc.Language))}
	h.render(w, http.StatusNotFound, func(buf *bytes.Buffer) error {
		return h.renderer.NotFound(buf, doc, p.Theme, links)
	})
}

func (h *Handler) render(w http.ResponseWriter, status int, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		h.logger.Error("site: rendering page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

func (h *Handler) handleManifest(w http.ResponseWriter, r *http.Request) {
	doc := h.loader.Document(h.preferences(r).Language)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "application/manifest+json")
	json.NewEncoder(w).Encode(NewManifest(doc))
}

func (h *Handler) handleContent(w http.ResponseWriter, r *http.Request) {
	lang, err := content.ParseLanguage(chi.URLParam(r, "lang"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc := h.loader.Document(lang)
	w.Header().Set("Content-Language", doc.Language)
	writeJSON(w, http.StatusOK, doc)
}

// searchResponse is the JSON response for the /api/search endpoint.
type searchResponse struct {
	Query    string        `json:"query"`
	Language string        `json:"language"`
	Results  []SearchEntry `json:"results"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
		return
	}
	lang := h.preferences(r).Language
	entries := h.loader.Catalog(lang).Search(query)
	writeJSON(w, http.StatusOK, searchResponse{
		Query:    query,
		Language: lang,
		Results:  BuildSearchIndex(entries, "/"),
	})
}

// handleStatic serves files below the content directory, falling back to
// the built-in stylesheet and script.
func (h *Handler) handleStatic(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean("/" + chi.URLParam(r, "*"))
	if rel == "/" {
		http.NotFound(w, r)
		return
	}
	file := filepath.Join(h.loader.Dir(), filepath.FromSlash(rel))
	if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
		http.ServeFile(w, r, file)
		return
	}
	if body, ok := builtinAssets[strings.TrimPrefix(rel, "/")]; ok {
		http.ServeContent(w, r, rel, h.started, strings.NewReader(body))
		return
	}
	http.NotFound(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// OpenBrowser opens the given URL in the default browser.
func OpenBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
