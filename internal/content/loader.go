package content

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/viewer"
)

// Loader caches parsed documents per requested language and drops them
// when the files change.
type Loader struct {
	dir    string
	logger *zap.Logger

	mu   sync.RWMutex
	docs map[string]*Document
	cats map[string]*Catalog
}

// NewLoader creates a Loader reading from dir.
func NewLoader(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		dir:    dir,
		logger: logger,
		docs:   make(map[string]*Document),
		cats:   make(map[string]*Catalog),
	}
}

// Dir returns the content directory.
func (l *Loader) Dir() string { return l.dir }

// Document returns the document for lang, using DefaultLanguage for
// unsupported codes. When neither language can be loaded it logs and
// returns Fallback(lang), which is not cached.
func (l *Loader) Document(lang string) *Document {
	lang = normalize(lang)

	l.mu.RLock()
	doc, ok := l.docs[lang]
	l.mu.RUnlock()
	if ok {
		return doc
	}

	doc, err := Load(l.dir, lang)
	if err != nil {
		l.logger.Error("content: loading documents", zap.String("lang", lang), zap.Error(err))
		return Fallback(lang)
	}
	if doc.Language != lang {
		l.logger.Warn("content: using fallback language",
			zap.String("requested", lang), zap.String("loaded", doc.Language))
	}

	l.mu.Lock()
	l.docs[lang] = doc
	delete(l.cats, lang)
	l.mu.Unlock()
	return doc
}

// Catalog returns the gallery catalog for lang.
func (l *Loader) Catalog(lang string) *Catalog {
	lang = normalize(lang)
	doc := l.Document(lang)

	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.cats[lang]; ok && l.docs[lang] == doc {
		return c
	}
	c := NewCatalog(doc)
	if l.docs[lang] == doc {
		l.cats[lang] = c
	}
	return c
}

// Gallery returns the media list of the gallery with the given slug.
func (l *Loader) Gallery(lang, slug string) (viewer.MediaList, bool) {
	e, ok := l.Catalog(lang).Lookup(slug)
	if !ok {
		return nil, false
	}
	return e.Folder.MediaList(MediaBase), true
}

func normalize(lang string) string {
	if l, err := ParseLanguage(lang); err == nil {
		return l
	}
	return DefaultLanguage
}

// Invalidate drops every cached document.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.docs = make(map[string]*Document)
	l.cats = make(map[string]*Catalog)
	l.mu.Unlock()
}

// Watch invalidates the cache whenever a config-*.json file in the
// content directory changes, calling onChange (if set) with the file's
// language. It blocks until ctx is done.
func (l *Loader) Watch(ctx context.Context, onChange func(lang string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watching %s: %w", l.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			lang, ok := documentLanguage(event.Name)
			if !ok {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			l.logger.Info("content: document changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			l.Invalidate()
			if onChange != nil {
				onChange(lang)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("content: watcher error", zap.Error(err))
		}
	}
}

func documentLanguage(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "config-") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	lang, err := ParseLanguage(strings.TrimSuffix(strings.TrimPrefix(name, "config-"), ".json"))
	return lang, err == nil
}
