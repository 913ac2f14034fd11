package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/folio-site/folio/internal/db"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestSaveAndGet(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()

	got, err := s.Get(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got != (Preferences{}) {
		t.Errorf("unsaved = %+v, want empty", got)
	}

	if err := s.Save(ctx, "c1", Preferences{Theme: ThemeDark}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "c1", Preferences{Language: "de-DE"}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, "c1")
	if got.Theme != ThemeDark || got.Language != "de" {
		t.Errorf("saved = %+v, want dark/de", got)
	}

	if other, _ := s.Get(ctx, "c2"); other != (Preferences{}) {
		t.Errorf("other client sees %+v", other)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := newStore(t)
	if err := s.Save(t.Context(), "c1", Preferences{Theme: "sepia"}); !errors.Is(err, ErrInvalidTheme) {
		t.Errorf("theme err = %v", err)
	}
	if err := s.Save(t.Context(), "c1", Preferences{Language: "fr"}); !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("language err = %v", err)
	}
}

func TestResolveDefaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if p := Resolve(Preferences{}, r); p.Theme != ThemeLight || p.Language != "en" {
		t.Errorf("bare request = %+v", p)
	}

	r.Header.Set("Sec-CH-Prefers-Color-Scheme", `"dark"`)
	r.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	if p := Resolve(Preferences{}, r); p.Theme != ThemeDark || p.Language != "de" {
		t.Errorf("hinted request = %+v", p)
	}

	if p := Resolve(Preferences{Theme: ThemeLight, Language: "en"}, r); p.Theme != ThemeLight || p.Language != "en" {
		t.Errorf("saved values lost to headers: %+v", p)
	}
}

func TestClientIDCookie(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	id := ClientID(w, r)
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != id {
		t.Fatalf("cookies = %+v", cookies)
	}

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cookies[0])
	w2 := httptest.NewRecorder()
	if got := ClientID(w2, r2); got != id {
		t.Errorf("ClientID = %q, want %q", got, id)
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Error("known client got a new cookie")
	}

	r3 := httptest.NewRequest(http.MethodGet, "/", nil)
	r3.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-uuid"})
	if _, ok := PeekClientID(r3); ok {
		t.Error("invalid id accepted")
	}
}

func serve(t *testing.T, s *Store) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, s)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body []byte, cookie *http.Cookie, header map[string]string) (*http.Response, Preferences) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var p Preferences
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			t.Fatal(err)
		}
	}
	return resp, p
}

func TestRoutes(t *testing.T) {
	s := newStore(t)
	srv := serve(t, s)

	resp, p := do(t, http.MethodGet, srv.URL+"/api/prefs", nil, nil, map[string]string{"Accept-Language": "de"})
	if resp.StatusCode != http.StatusOK || p.Language != "de" || p.Theme != ThemeLight {
		t.Fatalf("GET = %d %+v", resp.StatusCode, p)
	}
	if len(resp.Cookies()) != 0 {
		t.Error("GET issued a cookie")
	}

	resp, p = do(t, http.MethodPost, srv.URL+"/api/prefs/theme/toggle", nil, nil, nil)
	if p.Theme != ThemeDark {
		t.Errorf("toggle theme = %+v", p)
	}
	cookies := resp.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("toggle cookies = %+v", cookies)
	}
	client := cookies[0]

	_, p = do(t, http.MethodPost, srv.URL+"/api/prefs/theme/toggle", nil, client, nil)
	if p.Theme != ThemeLight {
		t.Errorf("second toggle = %+v", p)
	}

	_, p = do(t, http.MethodPost, srv.URL+"/api/prefs/language/toggle", nil, client, nil)
	if p.Language != "de" {
		t.Errorf("language toggle = %+v", p)
	}
	_, p = do(t, http.MethodGet, srv.URL+"/api/prefs", nil, client, map[string]string{"Accept-Language": "en"})
	if p.Language != "de" || p.Theme != ThemeLight {
		t.Errorf("saved prefs = %+v", p)
	}

	_, p = do(t, http.MethodPut, srv.URL+"/api/prefs", []byte(`{"theme":"dark","language":"en"}`), client, nil)
	if p.Theme != ThemeDark || p.Language != "en" {
		t.Errorf("PUT = %+v", p)
	}

	resp, _ = do(t, http.MethodPut, srv.URL+"/api/prefs", []byte(`{"theme":"neon"}`), client, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid PUT status = %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodPut, srv.URL+"/api/prefs", []byte(`{`), client, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed PUT status = %d", resp.StatusCode)
	}
}
