package tools

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/aws-documentation-mcp/internal/docs"
)

// GetAvailableServicesTool implements the get_available_services MCP tool.
type GetAvailableServicesTool struct {
	lister ServicesLister
	logger logSDK.Logger
}

// NewGetAvailableServicesTool constructs a GetAvailableServicesTool.
func NewGetAvailableServicesTool(lister ServicesLister, logger logSDK.Logger) (*GetAvailableServicesTool, error) {
	if lister == nil {
		return nil, errors.New("services lister is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &GetAvailableServicesTool{lister: lister, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *GetAvailableServicesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		docs.ToolGetAvailableServices,
		mcp.WithDescription("List the services available in AWS China together with their documentation URLs. "+
			"Services in AWS China differ from the global regions, so check this list before reading service pages. "+
			"The page is returned whole, as markdown."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle returns the services page.
func (t *GetAvailableServicesTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := t.lister.AvailableServices(ctx)
	if err != nil {
		toolLoggerFromContext(ctx, t.logger).Warn("get_available_services unavailable", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}
