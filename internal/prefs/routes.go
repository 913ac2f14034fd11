package prefs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts preference endpoints under /api/prefs on the
// given router.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/prefs", func(r chi.Router) {
		r.Get("/", handleGet(store))
		r.Put("/", handlePut(store))
		r.Post("/theme/toggle", handleToggle(store.ToggleTheme))
		r.Post("/language/toggle", handleToggle(store.ToggleLanguage))
	})
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.Effective(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handlePut(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Preferences
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		id := ClientID(w, r)
		if err := store.Save(r.Context(), id, p); err != nil {
			if errors.Is(err, ErrInvalidTheme) || errors.Is(err, ErrInvalidLanguage) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		saved, err := store.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, Resolve(saved, r))
	}
}

func handleToggle(toggle func(*http.Request, string) (Preferences, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := toggle(r, ClientID(w, r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
