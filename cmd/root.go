package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "blogsmith",
	Short: "Chat-driven blog article generator with RAG and fact checking",
	Long: `Blogsmith collects a blog article brief through a guided chat dialogue,
grounds the article in websites and documents you attach, generates it with
a researcher/writer/editor agent pipeline and verifies its numeric claims
against web search results before delivery.`,
}

func Execute() error {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".blogsmith.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
