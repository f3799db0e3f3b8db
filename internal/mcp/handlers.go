package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// handleFactCheck runs the verification pass over the given text.
func (s *Server) handleFactCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	annotated, err := s.verifier.Annotate(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fact check failed: %v", err)), nil
	}

	return mcp.NewToolResultText(annotated), nil
}

// handleSearchKnowledge searches every loaded source and concatenates the
// per-source passages.
func (s *Server) handleSearchKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 3)
	if limit <= 0 {
		limit = 3
	}

	tools := s.registry.Snapshot()
	if len(tools) == 0 {
		return mcp.NewToolResultText("No knowledge sources are loaded."), nil
	}

	var sb strings.Builder
	for _, t := range tools {
		passages, err := t.Search(ctx, query, limit)
		if err != nil {
			s.log.Warn("source search failed", zap.String("source", t.Source().Describe()), zap.Error(err))
			continue
		}
		if len(passages) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", t.Source().Describe())
		for _, p := range passages {
			sb.WriteString(p)
			sb.WriteString("\n\n")
		}
	}
	if sb.Len() == 0 {
		return mcp.NewToolResultText("No relevant passages found."), nil
	}
	return mcp.NewToolResultText(strings.TrimSpace(sb.String())), nil
}

// handleListSources lists the registered knowledge sources.
func (s *Server) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources := s.registry.Sources()
	if len(sources) == 0 {
		return mcp.NewToolResultText("No knowledge sources are loaded."), nil
	}
	var sb strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, src.Describe())
	}
	return mcp.NewToolResultText(sb.String()), nil
}
