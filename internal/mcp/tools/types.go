// Package tools implements the MCP tools of the documentation server.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/aws-documentation-mcp/internal/docs"
)

// Tool exposes the capabilities required by the MCP server registration lifecycle.
type Tool interface {
	Definition() mcp.Tool
	Handle(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Reader fetches documentation pages.
type Reader interface {
	Partition() docs.Partition
	ReadDocumentation(ctx context.Context, url string, maxLength, startIndex int) (string, error)
}

// Searcher runs documentation searches.
type Searcher interface {
	SearchDocumentation(ctx context.Context, phrase string, limit int) []docs.SearchResult
}

// Recommender finds pages related to a documentation page.
type Recommender interface {
	Recommend(ctx context.Context, url string) []docs.RecommendationResult
}

// ServicesLister returns the services page of a partition.
type ServicesLister interface {
	AvailableServices(ctx context.Context) (string, error)
}
