package offline

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the controller management endpoints under
// /api/offline on the given router.
func RegisterRoutes(r chi.Router, c *Controller) {
	r.Route("/api/offline", func(r chi.Router) {
		r.Get("/version", handleVersion(c))
		r.Get("/caches", handleStatus(c))
		r.Delete("/caches", handleReset(c))
		r.Post("/skip-waiting", handleSkipWaiting(c))
	})
}

func handleVersion(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": c.Version(),
			"static":  c.StaticStore(),
			"dynamic": c.DynamicStore(),
			"state":   c.State().String(),
		})
	}
}

func handleStatus(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stores, err := c.Status(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stores)
	}
}

func handleReset(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := c.Reset(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
	}
}

func handleSkipWaiting(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := c.SkipWaiting(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"state":   c.State().String(),
			"removed": removed,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
