package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ziadkadry99/campusbot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize campusbot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose providers, the document folder and the website to crawl, and writes .campusbot.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
