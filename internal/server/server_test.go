package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/folio-site/folio/internal/content"
	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/offline"
	"github.com/folio-site/folio/internal/origin"
	"github.com/folio-site/folio/internal/prefs"
	"github.com/folio-site/folio/internal/viewer"
)

const testContent = "../site/testdata/content"

func newLoader() *content.Loader {
	return content.NewLoader(testContent, nil)
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := New(Config{}, Deps{}); err == nil {
		t.Error("expected error without loader or controller")
	}
}

func TestHealthCheck(t *testing.T) {
	srv, err := New(Config{Port: 0}, Deps{Loader: newLoader()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv, err := New(Config{Port: 0, AllowAll: true}, Deps{Loader: newLoader()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestSiteAndPrefsRoutes(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	srv, err := New(Config{}, Deps{Loader: newLoader(), Prefs: prefs.NewStore(database)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/harbour-at-dawn/?lang=en", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Harbour at Dawn") {
		t.Errorf("gallery page = %d", w.Code)
	}

	req := httptest.NewRequest("PUT", "/api/prefs/", strings.NewReader(`{"theme":"dark"}`))
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT prefs = %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no client cookie issued")
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), `data-theme="dark"`) {
		t.Error("saved theme not rendered")
	}
}

func TestViewerWebSocket(t *testing.T) {
	srv, err := New(Config{}, Deps{Loader: newLoader()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/viewer", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(viewer.Command{Type: "open", Gallery: "harbour-at-dawn", Lang: "en", Index: 1}); err != nil {
		t.Fatal(err)
	}
	var view viewer.View
	if err := conn.ReadJSON(&view); err != nil {
		t.Fatal(err)
	}
	if !view.Open || view.Index != 1 || view.Count != 3 || view.Src != "site/images/harbour/02.jpg" {
		t.Errorf("view = %+v", view)
	}
	if view.Path != "/harbour-at-dawn" {
		t.Errorf("path after open = %q, want /harbour-at-dawn", view.Path)
	}

	if err := conn.WriteJSON(viewer.Command{Type: "open", Gallery: "missing"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&view); err != nil {
		t.Fatal(err)
	}
	if view.Type != "error" {
		t.Errorf("unknown gallery type = %q", view.Type)
	}

	if err := conn.WriteJSON(viewer.Command{Type: "close"}); err != nil {
		t.Fatal(err)
	}
	view = viewer.View{}
	if err := conn.ReadJSON(&view); err != nil {
		t.Fatal(err)
	}
	if view.Open || view.Path != "/" {
		t.Errorf("after close = open %v path %q, want closed at /", view.Open, view.Path)
	}
}

func TestOfflineControllerMode(t *testing.T) {
	loader := newLoader()
	site, err := SiteHandler(loader, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	storage := offline.NewMemoryStorage()
	ctrl, err := offline.New(storage, origin.NewHandler(site), offline.Options{
		Version:  "v-test",
		Critical: []string{"/index.html", "/site/styles.css"},
	})
	if err != nil {
		t.Fatal(err)
	}
	report, err := ctrl.Install(t.Context())
	if err != nil || report.Skipped || len(report.Critical.Cached) != 2 {
		t.Fatalf("install = %+v, %v", report, err)
	}
	if _, err := ctrl.Activate(t.Context()); err != nil {
		t.Fatal(err)
	}

	srv, err := New(Config{}, Deps{Loader: loader, Offline: ctrl})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/night-runner/?lang=en")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Night Runner") {
		t.Errorf("page through controller = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/offline/version")
	if err != nil {
		t.Fatal(err)
	}
	var version map[string]string
	json.NewDecoder(resp.Body).Decode(&version)
	resp.Body.Close()
	if version["state"] != "activated" || version["static"] != "static-v-test" {
		t.Errorf("version = %v", version)
	}

	status, err := ctrl.Status(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	var dynamicKeys []string
	for _, st := range status {
		if st.Name == ctrl.DynamicStore() {
			dynamicKeys = st.Keys
		}
	}
	if len(dynamicKeys) != 1 || dynamicKeys[0] != "/night-runner/?lang=en" {
		t.Errorf("dynamic keys = %v", dynamicKeys)
	}
}
