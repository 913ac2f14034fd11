package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/config"
	"github.com/folio-site/folio/internal/content"
	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/offline"
	"github.com/folio-site/folio/internal/origin"
	"github.com/folio-site/folio/internal/prefs"
	"github.com/folio-site/folio/internal/server"
)

// MediaPrefix is the request path prefix routed to the S3 origin.
const MediaPrefix = "/site/images/"

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `folio init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openDatabase opens the SQLite database below the data directory.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(filepath.Join(cfg.DataDir, "folio.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// openStorage returns the offline storage backend named in the config and
// a closer releasing it.
func openStorage(cfg *config.Config) (offline.Storage, io.Closer, error) {
	switch cfg.Offline.Backend {
	case config.BackendSQLite:
		database, err := openDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		return offline.NewSQLStorage(database), database, nil
	case config.BackendBolt:
		s, err := offline.OpenBolt(filepath.Join(cfg.DataDir, "offline.bolt"))
		if err != nil {
			return nil, nil, fmt.Errorf("opening bolt storage: %w", err)
		}
		return s, s, nil
	default:
		return offline.NewMemoryStorage(), nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newFetcher builds the network side of the offline controller: the
// upstream URL, or the local site when upstream is empty, with media
// requests sent to S3 when a bucket is configured.
func newFetcher(ctx context.Context, cfg *config.Config, upstream string, store *prefs.Store) (offline.Fetcher, error) {
	var fallback offline.Fetcher
	if upstream != "" {
		h, err := origin.NewHTTP(upstream, nil)
		if err != nil {
			return nil, err
		}
		fallback = h
	} else {
		h, err := server.SiteHandler(content.NewLoader(cfg.ContentDir, logger), store, logger)
		if err != nil {
			return nil, err
		}
		fallback = origin.NewHandler(h)
	}

	mux := origin.NewMux(fallback)
	if cfg.S3.Bucket != "" {
		client, err := origin.NewS3Client(ctx, origin.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		mux.Handle(MediaPrefix, origin.NewS3(client, cfg.S3.Bucket, cfg.S3.Prefix))
		logger.Info("media served from s3", zap.String("bucket", cfg.S3.Bucket), zap.String("path", MediaPrefix))
	}
	return mux, nil
}

// newController creates an offline controller from the config.
func newController(cfg *config.Config, storage offline.Storage, fetcher offline.Fetcher) (*offline.Controller, error) {
	return offline.New(storage, fetcher, offline.Options{
		Version:     cfg.Offline.Version,
		Probe:       cfg.Offline.Probe,
		Critical:    cfg.Offline.Critical,
		Optional:    cfg.Offline.Optional,
		StaticGlobs: cfg.Offline.StaticGlobs,
		Concurrency: 8,
		Logger:      logger,
	})
}

// runServer starts srv and shuts it down when ctx is cancelled.
func runServer(ctx context.Context, srv *server.Server) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
