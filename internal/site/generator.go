// Package site renders the portfolio: a static site generator for
// deployment and an HTTP handler serving the same pages live.
package site

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/content"
	"github.com/folio-site/folio/internal/walker"
)

// Options configures a Generator.
type Options struct {
	ContentDir      string
	OutputDir       string
	Languages       []string
	DefaultLanguage string
	// Critical and Optional are copied into offline-assets.json.
	Critical []string
	Optional []string
	Logger   *zap.Logger
}

// Stats summarizes a generator run.
type Stats struct {
	Pages  int `json:"pages"`
	Assets int `json:"assets"`
}

// Generator converts the content documents into a static HTML site.
type Generator struct {
	opts     Options
	loader   *content.Loader
	renderer *Renderer
	logger   *zap.Logger
}

// NewGenerator creates a Generator. Unsupported languages are rejected.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = content.DefaultLanguage
	}
	if len(opts.Languages) == 0 {
		opts.Languages = content.Languages
	}
	def, err := content.ParseLanguage(opts.DefaultLanguage)
	if err != nil {
		return nil, err
	}
	opts.DefaultLanguage = def

	seen := map[string]bool{}
	var langs []string
	for _, l := range opts.Languages {
		lang, err := content.ParseLanguage(l)
		if err != nil {
			return nil, err
		}
		if !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	opts.Languages = langs

	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Generator{
		opts:     opts,
		loader:   content.NewLoader(opts.ContentDir, opts.Logger),
		renderer: r,
		logger:   opts.Logger,
	}, nil
}

// prefix returns the output directory of a language, "" for the default.
func (g *Generator) prefix(lang string) string {
	if lang == g.opts.DefaultLanguage {
		return ""
	}
	return lang + "/"
}

// up returns the relative path from a page at the given directory depth
// back to the output root.
func up(depth int) string {
	return strings.Repeat("../", depth)
}

func orDot(p string) string {
	if p == "" {
		return "./"
	}
	return p
}

// Generate builds the full static site. Returns what was written.
func (g *Generator) Generate() (*Stats, error) {
	if err := os.MkdirAll(g.opts.OutputDir, 0o755); err != nil {
		return nil, err
	}

	stats := &Stats{}
	list := &AssetList{
		Critical: append([]string{}, g.opts.Critical...),
		Optional: append([]string{}, g.opts.Optional...),
		Pages:    []string{},
		Assets:   []Asset{},
	}

	for _, lang := range g.opts.Languages {
		pages, err := g.renderLanguage(lang)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", lang, err)
		}
		list.Pages = append(list.Pages, pages...)
	}
	stats.Pages = len(list.Pages)

	assets, err := g.copyContent()
	if err != nil {
		return nil, fmt.Errorf("copying content: %w", err)
	}
	list.Assets = assets
	stats.Assets = len(assets)

	manifest := NewManifest(g.loader.Document(g.opts.DefaultLanguage))
	if err := writeJSONFile(filepath.Join(g.opts.OutputDir, "manifest.webmanifest"), manifest); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}
	if err := writeJSONFile(filepath.Join(g.opts.OutputDir, "offline-assets.json"), list); err != nil {
		return nil, fmt.Errorf("writing asset list: %w", err)
	}

	g.logger.Info("site: generated",
		zap.String("output", g.opts.OutputDir),
		zap.Int("pages", stats.Pages),
		zap.Int("assets", stats.Assets))
	return stats, nil
}

// renderLanguage writes the overview, gallery and legal pages of lang and
// returns their site paths.
func (g *Generator) renderLanguage(lang string) ([]string, error) {
	doc := g.loader.Document(lang)
	catalog := g.loader.Catalog(lang)
	other := content.Other(lang)
	otherCatalog := g.loader.Catalog(other)
	prefix := g.prefix(lang)
	depth := strings.Count(prefix, "/")

	var pages []string
	write := func(rel string, render func(w io.Writer) error) error {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		out := filepath.Join(g.opts.OutputDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return err
		}
		pages = append(pages, "/"+strings.TrimSuffix(rel, "index.html"))
		return nil
	}

	root := up(depth)
	links := Links{Root: root, Home: "./", OtherHome: orDot(root + g.prefix(other))}
	if err := write(prefix+"index.html", func(w io.Writer) error {
		return g.renderer.Index(w, doc, catalog, "", links)
	}); err != nil {
		return nil, err
	}

	for _, e := range catalog.Entries() {
		root := up(depth + 1)
		otherHome := root + g.prefix(other)
		if slug, ok := otherCatalog.SlugFor(e.CategoryKey, e.FolderIndex); ok {
			otherHome += slug + "/"
		}
		links := Links{Root: root, Home: orDot(up(1)), OtherHome: orDot(otherHome)}
		if err := write(prefix+e.Slug+"/index.html", func(w io.Writer) error {
			return g.renderer.Gallery(w, doc, e, "", links)
		}); err != nil {
			return nil, err
		}
	}

	for _, name := range []string{"imprint", "privacy"} {
		if _, ok := doc.Legal.Doc(name); !ok {
			continue
		}
		root := up(depth + 2)
		links := Links{Root: root, Home: up(2), OtherHome: orDot(root + g.prefix(other))}
		if err := write(prefix+"legal/"+name+"/index.html", func(w io.Writer) error {
			return g.renderer.Legal(w, doc, name, "", links)
		}); err != nil {
			return nil, err
		}
	}

	search := BuildSearchIndex(catalog.Entries(), "/"+prefix)
	if err := WriteSearchIndex(search, filepath.Join(g.opts.OutputDir, filepath.FromSlash(prefix), "search-index.json")); err != nil {
		return nil, fmt.Errorf("writing search index: %w", err)
	}
	return pages, nil
}

// copyContent mirrors the content directory below site/ and adds the
// built-in stylesheet and script where the content has none.
func (g *Generator) copyContent() ([]Asset, error) {
	files, err := walker.Walk(walker.WalkerConfig{RootDir: g.opts.ContentDir, Hash: true})
	if err != nil {
		return nil, err
	}

	siteDir := filepath.Join(g.opts.OutputDir, "site")
	have := map[string]bool{}
	var assets []Asset
	for _, f := range files {
		dst := filepath.Join(siteDir, filepath.FromSlash(f.RelPath))
		if err := copyFile(f.Path, dst); err != nil {
			return nil, fmt.Errorf("copying %s: %w", f.RelPath, err)
		}
		have[f.RelPath] = true
		assets = append(assets, Asset{
			Path:     "/site/" + f.RelPath,
			Type:     f.Type,
			Size:     f.Size,
			Revision: f.ContentHash[:12],
		})
	}

	for _, name := range []string{"scripts.js", "styles.css"} {
		body := builtinAssets[name]
		if have[name] {
			continue
		}
		if err := os.MkdirAll(siteDir, 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(siteDir, name), []byte(body), 0o644); err != nil {
			return nil, err
		}
		assets = append(assets, Asset{Path: "/site/" + name, Type: walker.DetectType(name), Size: int64(len(body))})
	}
	return assets, nil
}

// builtinAssets are served and written when the content lacks them.
var builtinAssets = map[string]string{
	"styles.css": cssContent,
	"scripts.js": jsContent,
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
