package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/folio-site/folio/internal/progress"
	"github.com/folio-site/folio/internal/thumbs"
)

var thumbsCmd = &cobra.Command{
	Use:   "thumbs",
	Short: "Generate thumbnails for the gallery images",
	Long: `Walks the thumbnail source directory and writes a scaled copy of every
image below the target directory, keeping the relative paths. Existing
thumbnails are kept unless --force is given.`,
	RunE: runThumbs,
}

func init() {
	thumbsCmd.Flags().Bool("force", false, "regenerate existing thumbnails")
	thumbsCmd.Flags().Int("max-width", 0, "maximum thumbnail width (overrides config)")
	thumbsCmd.Flags().Int("max-height", 0, "maximum thumbnail height (overrides config)")
	rootCmd.AddCommand(thumbsCmd)
}

func runThumbs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := thumbs.Options{
		Source:    cfg.Thumbnails.Source,
		Target:    cfg.Thumbnails.Target,
		MaxWidth:  cfg.Thumbnails.MaxWidth,
		MaxHeight: cfg.Thumbnails.MaxHeight,
		Exclude:   cfg.Thumbnails.Exclude,
		Reporter:  progress.NewReporter("thumbnails"),
		Logger:    logger,
	}
	opts.Force, _ = cmd.Flags().GetBool("force")
	if w, _ := cmd.Flags().GetInt("max-width"); w > 0 {
		opts.MaxWidth = w
	}
	if h, _ := cmd.Flags().GetInt("max-height"); h > 0 {
		opts.MaxHeight = h
	}

	ctx, stop := signalContext()
	defer stop()

	res, err := thumbs.Generate(ctx, opts)
	if err != nil {
		return fmt.Errorf("generating thumbnails: %w", err)
	}

	fmt.Printf("Thumbnails: %d created, %d skipped, %d failed\n", len(res.Created), len(res.Skipped), len(res.Failed))
	failed := make([]string, 0, len(res.Failed))
	for p := range res.Failed {
		failed = append(failed, p)
	}
	sort.Strings(failed)
	for _, p := range failed {
		fmt.Printf("  %s: %s\n", p, res.Failed[p])
	}
	return nil
}
