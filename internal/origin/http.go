// Package origin provides the network side of the offline controller:
// fetchers that forward requests to an upstream server, an in-process
// handler, or an S3 bucket.
package origin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/folio-site/folio/internal/offline"
)

// MaxBodySize bounds the bytes buffered for one response. Larger bodies
// fail with ErrTooLarge instead of being cut short.
var MaxBodySize int64 = 64 << 20

// ErrTooLarge is returned when an upstream body exceeds MaxBodySize.
var ErrTooLarge = errors.New("response body too large")

// readBody buffers r, failing rather than truncating past MaxBodySize.
func readBody(r io.Reader) ([]byte, error) {
	limit := MaxBodySize
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

// forwardHeaders are copied from the incoming request to the upstream one.
var forwardHeaders = []string{
	"Accept",
	"Accept-Language",
	"Cookie",
	"If-None-Match",
	"If-Modified-Since",
	"Sec-CH-Prefers-Color-Scheme",
	"User-Agent",
}

// HTTP forwards requests to an upstream base URL.
type HTTP struct {
	base   *url.URL
	client *http.Client
}

// NewHTTP creates an HTTP origin for base, e.g. "http://localhost:8080".
// A nil client uses one with a 30 second timeout.
func NewHTTP(base string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream url %q must be http or https", base)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTP{base: u, client: client}, nil
}

// Fetch implements offline.Fetcher.
func (h *HTTP) Fetch(ctx context.Context, req *http.Request) (*offline.Response, error) {
	target := *h.base
	target.Path = strings.TrimSuffix(h.base.Path, "/") + req.URL.Path
	target.RawQuery = req.URL.RawQuery

	var body io.Reader
	if req.Body != nil && req.Method != http.MethodGet && req.Method != http.MethodHead {
		body = req.Body
	}
	out, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	for _, k := range forwardHeaders {
		if v := req.Header.Values(k); len(v) > 0 {
			out.Header[k] = v
		}
	}
	if ct := req.Header.Get("Content-Type"); ct != "" {
		out.Header.Set("Content-Type", ct)
	}

	resp, err := h.client.Do(out)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target.String(), err)
	}
	defer resp.Body.Close()

	data, err := readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target.String(), err)
	}
	return &offline.Response{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: data}, nil
}
