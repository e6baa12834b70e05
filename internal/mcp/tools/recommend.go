package tools

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/aws-documentation-mcp/internal/docs"
)

const recommendDescription = `Get content recommendations for an AWS documentation page.

Recommendations come from four groups, returned in this order:
1. Highly rated: popular pages of the same service
2. Journey: pages other readers commonly open next, context "Intent: ..."
3. New: recently added pages of the same service, context "New content added on <date>"
4. Similar: pages covering similar topics

To find newly released features of a service, call this tool with any page of that service (the welcome page works well) and look at the New entries.

Each recommendation has url, title and context, a short description or null.`

// RecommendTool implements the recommend MCP tool.
type RecommendTool struct {
	recommender Recommender
	logger      logSDK.Logger
}

// NewRecommendTool constructs a RecommendTool.
func NewRecommendTool(recommender Recommender, logger logSDK.Logger) (*RecommendTool, error) {
	if recommender == nil {
		return nil, errors.New("documentation recommender is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &RecommendTool{recommender: recommender, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *RecommendTool) Definition() mcp.Tool {
	return mcp.NewTool(
		docs.ToolRecommend,
		mcp.WithDescription(recommendDescription),
		mcp.WithString(
			"url",
			mcp.Required(),
			mcp.Description("URL of the AWS documentation page to get recommendations for."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle fetches recommendations for the url argument.
func (t *RecommendTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := toolLoggerFromContext(ctx, t.logger)

	url, err := readRequiredString(req, "url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := t.recommender.Recommend(ctx, url)
	return jsonListResult(logger, docs.ToolRecommend, results), nil
}
