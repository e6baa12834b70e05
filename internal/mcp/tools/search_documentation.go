package tools

import (
	"context"
	"strings"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/aws-documentation-mcp/internal/docs"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

const searchDescription = `Search AWS documentation with the official documentation search API.

Use it to find relevant pages when you do not have a specific URL.

Search tips:
- use specific technical terms rather than general phrases
- include service names to narrow results, e.g. "S3 bucket versioning" instead of "versioning"
- use quotes for exact phrase matching, e.g. "AWS Lambda function URLs"
- include abbreviations and alternative terms

Each result has rank_order (lower is more relevant), url, title, query_id and context, a short excerpt or null.`

// SearchDocumentationTool implements the search_documentation MCP tool.
type SearchDocumentationTool struct {
	searcher Searcher
	logger   logSDK.Logger
}

// NewSearchDocumentationTool constructs a SearchDocumentationTool.
func NewSearchDocumentationTool(searcher Searcher, logger logSDK.Logger) (*SearchDocumentationTool, error) {
	if searcher == nil {
		return nil, errors.New("documentation searcher is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &SearchDocumentationTool{searcher: searcher, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *SearchDocumentationTool) Definition() mcp.Tool {
	return mcp.NewTool(
		docs.ToolSearchDocumentation,
		mcp.WithDescription(searchDescription),
		mcp.WithString(
			"search_phrase",
			mcp.Required(),
			mcp.Description("Search phrase to use."),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Maximum number of results to return."),
			mcp.DefaultNumber(defaultSearchLimit),
			mcp.Min(1),
			mcp.Max(maxSearchLimit),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle runs the search. Remote failures come back as a single placeholder result.
func (t *SearchDocumentationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := toolLoggerFromContext(ctx, t.logger)

	phrase, err := readRequiredString(req, "search_phrase")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit, err := readIntArg(req, "limit", defaultSearchLimit, between(1, maxSearchLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := t.searcher.SearchDocumentation(ctx, strings.TrimSpace(phrase), limit)
	return jsonListResult(logger, docs.ToolSearchDocumentation, results), nil
}
