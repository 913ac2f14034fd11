package origin

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/folio-site/folio/internal/offline"
)

// Mux routes requests to fetchers by the longest matching path prefix.
type Mux struct {
	routes   []route
	fallback offline.Fetcher
}

type route struct {
	prefix  string
	fetcher offline.Fetcher
}

// NewMux creates a Mux that sends unmatched requests to fallback.
func NewMux(fallback offline.Fetcher) *Mux {
	return &Mux{fallback: fallback}
}

// Handle routes paths starting with prefix to f.
func (m *Mux) Handle(prefix string, f offline.Fetcher) {
	m.routes = append(m.routes, route{prefix: prefix, fetcher: f})
	sort.SliceStable(m.routes, func(i, j int) bool {
		return len(m.routes[i].prefix) > len(m.routes[j].prefix)
	})
}

// Fetch implements offline.Fetcher.
func (m *Mux) Fetch(ctx context.Context, req *http.Request) (*offline.Response, error) {
	for _, r := range m.routes {
		if strings.HasPrefix(req.URL.Path, r.prefix) {
			return r.fetcher.Fetch(ctx, req)
		}
	}
	if m.fallback == nil {
		return &offline.Response{Status: http.StatusNotFound, Header: http.Header{}}, nil
	}
	return m.fallback.Fetch(ctx, req)
}
