package site

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/folio-site/folio/internal/content"
	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/prefs"
)

func newTestServer(t *testing.T, store *prefs.Store) *httptest.Server {
	t.Helper()
	h, err := NewHandler(content.NewLoader(testContent, nil), store, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func fetch(t *testing.T, url string, header map[string]string, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestHandlerIndexLanguage(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := fetch(t, srv.URL+"/", map[string]string{"Accept-Language": "de-DE,de;q=0.9"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `<html lang="de"`) || !strings.Contains(body, "Hallo, ich bin Gustav") {
		t.Error("Accept-Language de did not select the German page")
	}

	_, body = fetch(t, srv.URL+"/?lang=en", map[string]string{"Accept-Language": "de"})
	if !strings.Contains(body, `<html lang="en"`) {
		t.Error("lang query did not win over Accept-Language")
	}

	_, body = fetch(t, srv.URL+"/index.html", map[string]string{"Sec-CH-Prefers-Color-Scheme": "dark"})
	if !strings.Contains(body, `data-theme="dark"`) {
		t.Error("color scheme hint ignored")
	}
	if !strings.Contains(body, `href="/site/styles.css"`) || !strings.Contains(body, `href="/harbour-at-dawn/"`) {
		t.Error("live pages should use absolute links")
	}
}

func TestHandlerSavedPreferences(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	store := prefs.NewStore(database)
	id := "9b2f3c1e-52f4-4c0b-9d4a-3b1f0c7e8a11"
	if err := store.Save(t.Context(), id, prefs.Preferences{Theme: prefs.ThemeDark, Language: "de"}); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t, store)
	_, body := fetch(t, srv.URL+"/", map[string]string{"Accept-Language": "en"}, &http.Cookie{Name: prefs.CookieName, Value: id})
	if !strings.Contains(body, `<html lang="de" data-theme="dark">`) {
		t.Error("saved preferences not applied")
	}
}

func TestHandlerGallery(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/harbour-at-dawn", "/harbour-at-dawn/"} {
		resp, body := fetch(t, srv.URL+path+"?lang=en", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d", path, resp.StatusCode)
			continue
		}
		if !strings.Contains(body, `data-gallery="harbour-at-dawn"`) {
			t.Errorf("GET %s missing gallery marker", path)
		}
		if !strings.Contains(body, `href="/hafen-im-morgengrauen?lang=de"`) {
			t.Errorf("GET %s missing translated link", path)
		}
	}

	resp, body := fetch(t, srv.URL+"/no-such-gallery", nil)
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "404") {
		t.Errorf("unknown gallery = %d", resp.StatusCode)
	}

	// Slugs are per language.
	resp, _ = fetch(t, srv.URL+"/harbour-at-dawn?lang=de", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("English slug in German = %d, want 404", resp.StatusCode)
	}
}

func TestHandlerLegal(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := fetch(t, srv.URL+"/legal/imprint?lang=en", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Example Street 1, Hamburg") {
		t.Errorf("imprint = %d", resp.StatusCode)
	}
	resp, _ = fetch(t, srv.URL+"/legal/privacy?lang=de", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("empty privacy = %d, want 404", resp.StatusCode)
	}
	resp, _ = fetch(t, srv.URL+"/legal/terms", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown legal doc = %d, want 404", resp.StatusCode)
	}
}

func TestHandlerContentAPI(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := fetch(t, srv.URL+"/api/content/de", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Language") != "de" {
		t.Fatalf("content de = %d %q", resp.StatusCode, resp.Header.Get("Content-Language"))
	}
	var doc content.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Content.Hero.Title != "Hallo, ich bin Gustav" {
		t.Errorf("hero title = %q", doc.Content.Hero.Title)
	}

	resp, _ = fetch(t, srv.URL+"/api/content/fr", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("content fr = %d, want 400", resp.StatusCode)
	}
}

func TestHandlerSearch(t *testing.T) {
	srv := newTestServer(t, nil)

	_, body := fetch(t, srv.URL+"/api/search?q=runner&lang=en", nil)
	var res searchResponse
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Results) == 0 || res.Results[0].Path != "/night-runner/" {
		t.Errorf("results = %+v", res.Results)
	}

	resp, _ := fetch(t, srv.URL+"/api/search", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query = %d, want 400", resp.StatusCode)
	}
}

func TestHandlerManifestAndStatic(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := fetch(t, srv.URL+"/manifest.webmanifest", nil)
	if resp.Header.Get("Cache-Control") != "no-cache" {
		t.Errorf("manifest Cache-Control = %q", resp.Header.Get("Cache-Control"))
	}
	var m Manifest
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatal(err)
	}
	if m.Name != "Gustav Schwarzbach | Portfolio" || m.StartURL != "/" {
		t.Errorf("manifest = %+v", m)
	}

	_, body = fetch(t, srv.URL+"/site/images/harbour/01.jpg", nil)
	if body != "jpegdata" {
		t.Errorf("image body = %q", body)
	}
	resp, body = fetch(t, srv.URL+"/site/styles.css", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, ":root") {
		t.Errorf("built-in stylesheet = %d", resp.StatusCode)
	}
	_, body = fetch(t, srv.URL+"/site/scripts.js", nil)
	if !strings.Contains(body, "history.pushState") || !strings.Contains(body, `"popstate"`) {
		t.Error("viewer script does not follow the session path")
	}
	resp, _ = fetch(t, srv.URL+"/site/missing.png", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing asset = %d", resp.StatusCode)
	}
}
