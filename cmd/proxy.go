package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/server"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the offline cache controller in front of an upstream site",
	Long: `Starts an HTTP proxy that answers same-origin GET requests from
versioned static and dynamic stores, falling back to them when the
upstream is unreachable. The static store is primed with the critical
and optional assets at startup and stores of other versions are removed.

Without an upstream URL the local content directory is served. Media
below /site/images/ come from S3 when s3.bucket is configured.`,
	RunE: runProxy,
}

func init() {
	proxyCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	proxyCmd.Flags().String("upstream", "", "upstream base URL (overrides offline.upstream)")
	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if upstream, _ := cmd.Flags().GetString("upstream"); upstream != "" {
		cfg.Offline.Upstream = upstream
	}

	ctx, stop := signalContext()
	defer stop()

	storage, closer, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	fetcher, err := newFetcher(ctx, cfg, cfg.Offline.Upstream, nil)
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg, storage, fetcher)
	if err != nil {
		return err
	}
	defer ctrl.Wait()
	if err := activate(ctx, ctrl); err != nil {
		return err
	}

	srv, err := server.New(server.Config{Port: cfg.Server.Port, AllowAll: cfg.Server.AllowAllOrigins},
		server.Deps{Offline: ctrl, Logger: logger})
	if err != nil {
		return err
	}
	logger.Info("offline proxy ready",
		zap.Int("port", cfg.Server.Port),
		zap.String("upstream", cfg.Offline.Upstream),
		zap.String("backend", string(cfg.Offline.Backend)))
	return runServer(ctx, srv)
}
