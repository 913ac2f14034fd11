package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/site"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Generate the static portfolio website",
	Long: `Generates a self-contained static site from the content directory:
one overview, gallery and legal page per language, the copied media,
a search index, the web app manifest and the offline asset list.`,
	RunE: runSite,
}

func init() {
	siteCmd.Flags().Bool("serve", false, "start a local HTTP server after generating")
	siteCmd.Flags().Int("port", 8080, "port for the local dev server")
	siteCmd.Flags().Bool("open", false, "open browser automatically when serving")
	siteCmd.Flags().String("output", "", "override output directory (defaults to output_dir)")
	rootCmd.AddCommand(siteCmd)
}

func runSite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	generator, err := site.NewGenerator(site.Options{
		ContentDir:      cfg.ContentDir,
		OutputDir:       outputDir,
		Languages:       cfg.Languages,
		DefaultLanguage: cfg.DefaultLanguage,
		Critical:        cfg.Offline.Critical,
		Optional:        cfg.Offline.Optional,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	stats, err := generator.Generate()
	if err != nil {
		return fmt.Errorf("generating site: %w", err)
	}

	fmt.Printf("Static site generated: %s (%d pages, %d assets)\n", outputDir, stats.Pages, stats.Assets)

	serve, _ := cmd.Flags().GetBool("serve")
	if !serve {
		return nil
	}
	port, _ := cmd.Flags().GetInt("port")
	url := fmt.Sprintf("http://localhost:%d", port)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Handle("/*", http.FileServer(http.Dir(outputDir)))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signalContext()
	defer stop()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	logger.Info("serving generated site", zap.String("url", url), zap.String("dir", outputDir))
	if open, _ := cmd.Flags().GetBool("open"); open {
		site.OpenBrowser(url)
	}
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving site: %w", err)
	}
	return nil
}
