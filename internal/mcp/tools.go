package mcp

import "github.com/mark3labs/mcp-go/mcp"

// factCheckTool defines the fact_check MCP tool.
var factCheckTool = mcp.NewTool("fact_check",
	mcp.WithDescription("Verify the numeric claims in a text against web search results. "+
		"Claims confirmed by a source are annotated with it; claims contradicted by every source are removed."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("The text whose factual claims should be verified"),
	),
)

// searchKnowledgeTool defines the search_knowledge MCP tool.
var searchKnowledgeTool = mcp.NewTool("search_knowledge",
	mcp.WithDescription("Search the loaded knowledge sources (documents and websites) semantically and return the most relevant passages."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of passages per source (default 3)"),
	),
)

// listSourcesTool defines the list_sources MCP tool.
var listSourcesTool = mcp.NewTool("list_sources",
	mcp.WithDescription("List the knowledge sources currently loaded and searchable."),
)
