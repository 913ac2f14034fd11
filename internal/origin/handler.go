package origin

import (
	"bytes"
	"context"
	"net/http"

	"github.com/folio-site/folio/internal/offline"
)

// Handler serves requests from an in-process http.Handler, such as the
// site itself. It never fails with a network error.
type Handler struct {
	h http.Handler
}

// NewHandler wraps h as a fetcher.
func NewHandler(h http.Handler) *Handler {
	return &Handler{h: h}
}

// Fetch implements offline.Fetcher.
func (o *Handler) Fetch(ctx context.Context, req *http.Request) (*offline.Response, error) {
	rec := &recorder{header: http.Header{}}
	o.h.ServeHTTP(rec, req.Clone(ctx))
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return &offline.Response{Status: rec.status, Header: rec.header, Body: rec.body.Bytes()}, nil
}

type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *recorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(p)
}
