package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/blogsmith/internal/knowledge"
	"github.com/ziadkadry99/blogsmith/internal/logging"
	"github.com/ziadkadry99/blogsmith/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server exposing fact_check and search_knowledge tools",
	Long: `Starts an MCP server on stdio so AI agents can fact-check statements and
search the documents in the configured documents directory. Stdout carries
the protocol; logs go to the log file only.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Stdio transport: console logging would corrupt the protocol stream.
	log := logging.NewFileOnly(cfg.LogFile, verbose)
	defer log.Sync()

	verifier, err := newVerifier(cfg, log)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	registry := knowledge.NewRegistry(knowledge.NewToolBuilder(embedder), log)

	srv := mcp.NewServer(verifier, registry, log)
	if err := srv.LoadDocuments(context.Background(), cfg.DocumentsDir); err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}

	return srv.Serve()
}
