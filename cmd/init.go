package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/blogsmith/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize blogsmith configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure blogsmith and generates a .blogsmith.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
