// Package mcp exposes the fact-checking and knowledge-search capabilities
// over the Model Context Protocol so external agents can use them.
package mcp

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/factcheck"
	"github.com/ziadkadry99/blogsmith/internal/knowledge"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server exposing fact_check and search_knowledge tools.
type Server struct {
	verifier *factcheck.Verifier
	registry *knowledge.Registry
	mcp      *server.MCPServer
	log      *zap.Logger
}

// NewServer creates the MCP server. registry holds the knowledge sources
// available to search_knowledge; it may be empty.
func NewServer(verifier *factcheck.Verifier, registry *knowledge.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		verifier: verifier,
		registry: registry,
		log:      log,
	}

	s.mcp = server.NewMCPServer(
		"blogsmith",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(factCheckTool, s.handleFactCheck)
	s.mcp.AddTool(searchKnowledgeTool, s.handleSearchKnowledge)
	s.mcp.AddTool(listSourcesTool, s.handleListSources)
}

// LoadDocuments registers every supported document under dir with the
// knowledge registry so search_knowledge can see it. Unreadable files are
// logged and skipped.
func (s *Server) LoadDocuments(ctx context.Context, dir string) error {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "**", "*"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		var kind knowledge.DocKind
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			kind = knowledge.DocPDF
		case ".docx":
			kind = knowledge.DocDOCX
		case ".txt", ".md":
			kind = knowledge.DocTXT
		default:
			continue
		}
		if err := s.registry.Register(ctx, knowledge.DocumentSource(path, kind)); err != nil {
			s.log.Warn("document skipped", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

// Serve starts the MCP server on stdio. Stdout carries MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
