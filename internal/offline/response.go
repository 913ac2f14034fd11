// Package offline implements the offline cache controller: it intercepts
// same-origin GET requests, classifies them, and answers each one with a
// cache-first, network-first, stale-while-revalidate or
// network-with-cache-fallback strategy over versioned named stores.
package offline

import (
	"context"
	"net/http"
	"strings"
)

// Response is a fully buffered HTTP response as kept in a Store.
type Response struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// Fetcher retrieves a request from the network. A non-nil error means the
// network could not be reached; HTTP error statuses come back as responses.
type Fetcher interface {
	Fetch(ctx context.Context, req *http.Request) (*Response, error)
}

// FetcherFunc adapts a function to a Fetcher.
type FetcherFunc func(ctx context.Context, req *http.Request) (*Response, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req *http.Request) (*Response, error) {
	return f(ctx, req)
}

// OK reports whether the response may be stored. Only plain 200s are cached.
func (r *Response) OK() bool {
	return r != nil && r.Status == http.StatusOK
}

// Clone returns a deep copy of r.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	out := &Response{Status: r.Status, Header: r.Header.Clone()}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	if out.Header == nil {
		out.Header = http.Header{}
	}
	return out
}

// Write copies the response onto w.
func (r *Response) Write(w http.ResponseWriter) error {
	h := w.Header()
	for k, vs := range r.Header {
		if hopByHop[http.CanonicalHeaderKey(k)] {
			continue
		}
		h[k] = append([]string(nil), vs...)
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(r.Body)
	return err
}

var hopByHop = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
	"Content-Length":      true,
}

// Key is the cache key of a request: its path plus query.
func Key(req *http.Request) string {
	return KeyFor(req.URL.RequestURI())
}

// KeyFor normalises an asset path such as "./site/styles.css" to the key
// used for requests to it.
func KeyFor(asset string) string {
	asset = strings.TrimPrefix(asset, "./")
	if !strings.HasPrefix(asset, "/") {
		asset = "/" + asset
	}
	return asset
}

// Shareable reports whether resp, fetched for req, may go into a store that
// answers every client. Credentialed requests and responses that are private
// or vary on client headers are kept out. Vary on Origin or Accept-Encoding
// is allowed, since fetchers neither forward nor negotiate those.
// req may be nil for requests the controller makes itself.
func Shareable(req *http.Request, resp *Response) bool {
	if req != nil && (req.Header.Get("Cookie") != "" || req.Header.Get("Authorization") != "") {
		return false
	}
	if len(resp.Header.Values("Set-Cookie")) > 0 {
		return false
	}
	for _, v := range resp.Header.Values("Cache-Control") {
		for _, d := range strings.Split(v, ",") {
			switch strings.ToLower(strings.TrimSpace(d)) {
			case "private", "no-store":
				return false
			}
		}
	}
	for _, v := range resp.Header.Values("Vary") {
		for _, f := range strings.Split(v, ",") {
			switch http.CanonicalHeaderKey(strings.TrimSpace(f)) {
			case "", "Origin", "Accept-Encoding":
			default:
				return false
			}
		}
	}
	return true
}
