// Package prefs stores per-visitor display preferences (theme and
// language) keyed by an anonymous client id cookie.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/folio-site/folio/internal/content"
	"github.com/folio-site/folio/internal/db"
)

// Keys under which preferences are stored.
const (
	KeyTheme    = "theme"
	KeyLanguage = "preferred-language"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// CookieName is the cookie holding the client id.
const CookieName = "folio_client"

var (
	ErrInvalidTheme    = errors.New("prefs: theme must be light or dark")
	ErrInvalidLanguage = errors.New("prefs: unsupported language")
)

// Preferences are a visitor's settings. Empty fields are unset.
type Preferences struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

// Validate checks the set fields.
func (p Preferences) Validate() error {
	if p.Theme != "" && p.Theme != ThemeLight && p.Theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, p.Theme)
	}
	if p.Language != "" {
		if _, err := content.ParseLanguage(p.Language); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidLanguage, p.Language)
		}
	}
	return nil
}

// Store reads and writes preferences in the database.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Get returns the saved preferences of a client.
func (s *Store) Get(ctx context.Context, clientID string) (Preferences, error) {
	var p Preferences
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM preferences WHERE client_id = ?`, clientID)
	if err != nil {
		return p, fmt.Errorf("querying preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return p, fmt.Errorf("scanning preference: %w", err)
		}
		switch key {
		case KeyTheme:
			p.Theme = value
		case KeyLanguage:
			p.Language = value
		}
	}
	return p, rows.Err()
}

// Save stores the set fields of p, leaving the others untouched.
func (s *Store) Save(ctx context.Context, clientID string, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Theme != "" {
		if err := s.set(ctx, clientID, KeyTheme, p.Theme); err != nil {
			return err
		}
	}
	if p.Language != "" {
		lang, _ := content.ParseLanguage(p.Language)
		if err := s.set(ctx, clientID, KeyLanguage, lang); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) set(ctx context.Context, clientID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (client_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(client_id, key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		clientID, key, value)
	if err != nil {
		return fmt.Errorf("saving preference %s: %w", key, err)
	}
	return nil
}

// Effective returns the preferences that apply to r: saved values of the
// request's client, else the theme the browser asks for and the language
// negotiated from Accept-Language. It never sets a cookie.
func (s *Store) Effective(r *http.Request) (Preferences, error) {
	var saved Preferences
	if id, ok := PeekClientID(r); ok {
		var err error
		if saved, err = s.Get(r.Context(), id); err != nil {
			return Preferences{}, err
		}
	}
	return Resolve(saved, r), nil
}

// Resolve fills the unset fields of saved from the request headers.
func Resolve(saved Preferences, r *http.Request) Preferences {
	p := saved
	if p.Theme != ThemeLight && p.Theme != ThemeDark {
		p.Theme = ThemeLight
		if strings.EqualFold(strings.Trim(r.Header.Get("Sec-CH-Prefers-Color-Scheme"), `"`), ThemeDark) {
			p.Theme = ThemeDark
		}
	}
	p.Language = content.DetectLanguage(saved.Language, r.Header.Get("Accept-Language"))
	return p
}

// ToggleTheme flips the effective theme of the client and saves it.
func (s *Store) ToggleTheme(r *http.Request, clientID string) (Preferences, error) {
	p, err := s.effectiveFor(r, clientID)
	if err != nil {
		return p, err
	}
	if p.Theme == ThemeDark {
		p.Theme = ThemeLight
	} else {
		p.Theme = ThemeDark
	}
	return p, s.Save(r.Context(), clientID, Preferences{Theme: p.Theme})
}

// ToggleLanguage switches the effective language of the client between
// German and English and saves it.
func (s *Store) ToggleLanguage(r *http.Request, clientID string) (Preferences, error) {
	p, err := s.effectiveFor(r, clientID)
	if err != nil {
		return p, err
	}
	p.Language = content.Other(p.Language)
	return p, s.Save(r.Context(), clientID, Preferences{Language: p.Language})
}

func (s *Store) effectiveFor(r *http.Request, clientID string) (Preferences, error) {
	saved, err := s.Get(r.Context(), clientID)
	if err != nil {
		return Preferences{}, err
	}
	return Resolve(saved, r), nil
}

// PeekClientID returns the client id carried by r, if it is valid.
func PeekClientID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// ClientID returns the client id of r, issuing a new one in a cookie on w
// when the request has none.
func ClientID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := PeekClientID(r); ok {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
