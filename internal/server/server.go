package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/content"
	"github.com/folio-site/folio/internal/offline"
	"github.com/folio-site/folio/internal/prefs"
	"github.com/folio-site/folio/internal/router"
	"github.com/folio-site/folio/internal/site"
	"github.com/folio-site/folio/internal/viewer"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Deps are the components a server mounts. Loader serves the site itself;
// Offline, when set, answers page and asset requests from its stores.
// At least one of the two is required.
type Deps struct {
	Loader  *content.Loader
	Prefs   *prefs.Store
	Offline *offline.Controller
	Logger  *zap.Logger
}

// Server is the folio HTTP server used by `folio serve` and `folio proxy`.
type Server struct {
	cfg        Config
	deps       Deps
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server and registers every route for deps.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Loader == nil && deps.Offline == nil {
		return nil, errors.New("server: a content loader or an offline controller is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, deps: deps, logger: deps.Logger}

	r, err := s.buildRouter()
	if err != nil {
		return nil, err
	}
	s.router = r
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() (chi.Router, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Sec-CH-Prefers-Color-Scheme"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The websocket hijacks its connection and must stay outside the
	// timeout group.
	if s.deps.Loader != nil {
		newHistory := func() viewer.History { return &router.State{Stack: []string{router.Root}} }
		viewer.RegisterRoutes(r, s.deps.Loader.Gallery, newHistory, s.logger)
	}

	var err error
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		if s.deps.Prefs != nil {
			prefs.RegisterRoutes(r, s.deps.Prefs)
		}
		if s.deps.Offline != nil {
			offline.RegisterRoutes(r, s.deps.Offline)
			r.Handle("/*", s.deps.Offline)
			return
		}
		var h *site.Handler
		if h, err = site.NewHandler(s.deps.Loader, s.deps.Prefs, s.logger); err != nil {
			return
		}
		site.RegisterRoutes(r, h)
	})
	if err != nil {
		return nil, fmt.Errorf("building site handler: %w", err)
	}
	return r, nil
}

// SiteHandler returns a router serving only the site pages and assets of
// loader. It is the in-process origin behind an offline controller.
func SiteHandler(loader *content.Loader, store *prefs.Store, logger *zap.Logger) (http.Handler, error) {
	h, err := site.NewHandler(loader, store, logger)
	if err != nil {
		return nil, err
	}
	r := chi.NewRouter()
	site.RegisterRoutes(r, h)
	// Requests arrive from the outer router; drop its routing state so r
	// matches the full path again.
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, nil)
		r.ServeHTTP(w, req.WithContext(ctx))
	}), nil
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Config returns the server configuration.
func (s *Server) Config() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("folio server listening", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
