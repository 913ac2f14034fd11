package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/logging"
)

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Bilingual portfolio site with media viewer and offline cache",
	Long: `Folio serves and generates a bilingual (English/German) portfolio
website from config-<lang>.json content files. It includes a remote
media viewer, an offline cache proxy with versioned stores, and a
thumbnail generator for gallery images.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".folio.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
