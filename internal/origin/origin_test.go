package origin

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/go-chi/chi/v5"

	"github.com/folio-site/folio/internal/offline"
)

func TestHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/base/site/styles.css" || r.URL.RawQuery != "v=2" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Accept") != "text/css" {
			t.Errorf("Accept not forwarded: %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "text/css")
		w.Write([]byte("body{}"))
	}))
	defer srv.Close()

	o, err := NewHTTP(srv.URL+"/base/", nil)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/site/styles.css?v=2", nil)
	req.Header.Set("Accept", "text/css")
	resp, err := o.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if resp.Status != http.StatusOK || string(resp.Body) != "body{}" {
		t.Errorf("got %d %q", resp.Status, resp.Body)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/css" {
		t.Errorf("Content-Type = %q", got)
	}

	resp, err = o.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", resp.Status)
	}
}

func TestHTTPFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	o, err := NewHTTP(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil)); err == nil {
		t.Error("expected error for closed upstream")
	}
}

func TestNewHTTPRejectsBadScheme(t *testing.T) {
	if _, err := NewHTTP("ftp://example.com", nil); err == nil {
		t.Error("expected error for ftp scheme")
	}
}

func TestHandlerFetch(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/index.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	})
	r.Get("/teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	o := NewHandler(r)
	resp, err := o.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, "/index.html", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusOK || string(resp.Body) != "<html></html>" {
		t.Errorf("got %d %q", resp.Status, resp.Body)
	}

	resp, _ = o.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, "/teapot", nil))
	if resp.Status != http.StatusTeapot {
		t.Errorf("status = %d, want 418", resp.Status)
	}
}

type fakeS3 struct {
	objects map[string]string
	err     error
	keys    []string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(strings.NewReader(body)),
		ContentType: aws.String("binary/octet-stream"),
		ETag:        aws.String(`"abc"`),
	}, nil
}

func TestS3Fetch(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"media/site/images/a.jpg": "jpeg"}}
	o := NewS3(client, "portfolio", "media/")

	resp, err := o.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, "/site/images/a.jpg", nil))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if resp.Status != http.StatusOK || string(resp.Body) != "jpeg" {
		t.Errorf("got %d %q", resp.Status, resp.Body)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", got)
	}
	if got := resp.Header.Get("ETag"); got != `"abc"` {
		t.Errorf("ETag = %q", got)
	}

	resp, err = o.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, "/site/images/../images/b.jpg", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusNotFound {
		t.Errorf("missing object status = %d, want 404", resp.Status)
	}
	if last := client.keys[len(client.keys)-1]; last != "media/site/images/b.jpg" {
		t.Errorf("object key = %q", last)
	}

	client.err = errors.New("connection refused")
	if _, err := o.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, "/site/images/a.jpg", nil)); err == nil {
		t.Error("expected network error")
	}
}

func TestMux(t *testing.T) {
	tag := func(name string) offline.Fetcher {
		return offline.FetcherFunc(func(ctx context.Context, req *http.Request) (*offline.Response, error) {
			return &offline.Response{Status: http.StatusOK, Body: []byte(name)}, nil
		})
	}

	m := NewMux(tag("site"))
	m.Handle("/site/", tag("assets"))
	m.Handle("/site/images/", tag("bucket"))

	tests := map[string]string{
		"/site/images/a.jpg": "bucket",
		"/site/styles.css":   "assets",
		"/index.html":        "site",
	}
	for path, want := range tests {
		resp, err := m.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatal(err)
		}
		if string(resp.Body) != want {
			t.Errorf("%s routed to %q, want %q", path, resp.Body, want)
		}
	}

	empty := NewMux(nil)
	resp, _ := empty.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, "/x", nil))
	if resp.Status != http.StatusNotFound {
		t.Errorf("empty mux status = %d, want 404", resp.Status)
	}
}

func withMaxBodySize(t *testing.T, n int64) {
	t.Helper()
	old := MaxBodySize
	MaxBodySize = n
	t.Cleanup(func() { MaxBodySize = old })
}

func TestOversizedBodyIsRejected(t *testing.T) {
	withMaxBodySize(t, 16)
	reel := strings.Repeat("v", 26)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte(reel))
	}))
	defer upstream.Close()
	h, err := NewHTTP(upstream.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	bucket := NewS3(&fakeS3{objects: map[string]string{"site/videos/reel.mp4": reel}}, "portfolio", "")

	for name, o := range map[string]offline.Fetcher{"http": h, "s3": bucket} {
		resp, err := o.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, "/site/videos/reel.mp4", nil))
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("%s: err = %v, want ErrTooLarge", name, err)
		}
		if resp != nil {
			t.Errorf("%s: got response %d with %d bytes", name, resp.Status, len(resp.Body))
		}
	}

	// A body exactly at the limit still passes.
	exact := NewS3(&fakeS3{objects: map[string]string{"a.bin": reel[:16]}}, "portfolio", "")
	resp, err := exact.Fetch(context.Background(), httptest.NewRequest(http.MethodGet, "/a.bin", nil))
	if err != nil || len(resp.Body) != 16 {
		t.Errorf("body at limit = %v, %v", resp, err)
	}
}

func TestOversizedBodyIsNotCached(t *testing.T) {
	withMaxBodySize(t, 16)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("v", 26)))
	}))
	defer upstream.Close()
	h, err := NewHTTP(upstream.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	storage := offline.NewMemoryStorage()
	ctrl, err := offline.New(storage, h, offline.Options{Version: "v1"})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ctrl.Handle(context.Background(), httptest.NewRequest(http.MethodGet, "/site/videos/reel.mp4", nil))
	ctrl.Wait()
	if !errors.Is(err, offline.ErrNotCached) || resp != nil {
		t.Errorf("Handle = %v, %v; want ErrNotCached", resp, err)
	}
	if _, err := storage.Match(context.Background(), "/site/videos/reel.mp4"); !errors.Is(err, offline.ErrCacheMiss) {
		t.Errorf("truncated body was cached: %v", err)
	}
}
