package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/folio-site/folio/internal/content"
	"github.com/folio-site/folio/internal/offline"
	"github.com/folio-site/folio/internal/origin"
	"github.com/folio-site/folio/internal/prefs"
	"github.com/folio-site/folio/internal/server"
	"github.com/folio-site/folio/internal/site"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio from the content directory",
	Long: `Starts the portfolio web server. Pages are rendered from the
config-<lang>.json files on every request and reloaded when they change.
Visitor preferences are kept in the data directory. With --offline the
pages are answered through the offline cache controller.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().Bool("open", false, "open the site in the default browser")
	serveCmd.Flags().Bool("offline", false, "answer requests through the offline cache controller")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}

	ctx, stop := signalContext()
	defer stop()

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	store := prefs.NewStore(database)

	loader := content.NewLoader(cfg.ContentDir, logger)
	deps := server.Deps{Loader: loader, Prefs: store, Logger: logger}

	if useOffline, _ := cmd.Flags().GetBool("offline"); useOffline {
		storage, closer, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		siteHandler, err := server.SiteHandler(loader, store, logger)
		if err != nil {
			return err
		}
		ctrl, err := newController(cfg, storage, origin.NewHandler(siteHandler))
		if err != nil {
			return err
		}
		// Runs before closer.Close: background refreshes still write to storage.
		defer ctrl.Wait()
		if err := activate(ctx, ctrl); err != nil {
			return err
		}
		deps.Offline = ctrl
	}

	srv, err := server.New(server.Config{Port: cfg.Server.Port, AllowAll: cfg.Server.AllowAllOrigins}, deps)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	logger.Info("serving portfolio",
		zap.String("url", url),
		zap.String("content", cfg.ContentDir),
		zap.String("version", Version))
	if open, _ := cmd.Flags().GetBool("open"); open {
		site.OpenBrowser(url)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loader.Watch(gctx, func(lang string) {
			logger.Info("content reloaded", zap.String("lang", lang))
		})
	})
	g.Go(func() error {
		defer stop()
		return runServer(gctx, srv)
	})
	return g.Wait()
}

// activate installs and activates ctrl, logging what was primed and removed.
func activate(ctx context.Context, ctrl *offline.Controller) error {
	report, err := ctrl.Install(ctx)
	if err != nil {
		return fmt.Errorf("installing offline cache: %w", err)
	}
	if len(report.Critical.Failed) > 0 {
		logger.Warn("critical assets not cached", zap.Strings("assets", report.Critical.Failed))
	}
	removed, err := ctrl.Activate(ctx)
	if err != nil {
		return fmt.Errorf("activating offline cache: %w", err)
	}
	logger.Info("offline cache active",
		zap.String("version", ctrl.Version()),
		zap.Bool("primed", !report.Skipped),
		zap.Strings("removed", removed))
	return nil
}
