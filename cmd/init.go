package cmd

import (
	"github.com/spf13/cobra"

	"github.com/folio-site/folio/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize folio configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure folio for your portfolio and writes a .folio.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
