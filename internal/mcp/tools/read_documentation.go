package tools

import (
	"context"
	"fmt"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/aws-documentation-mcp/internal/docs"
)

const (
	defaultMaxLength = 5000
	maxMaxLength     = 999999
)

// ReadDocumentationTool implements the read_documentation MCP tool.
type ReadDocumentationTool struct {
	reader Reader
	logger logSDK.Logger
}

// NewReadDocumentationTool constructs a ReadDocumentationTool.
func NewReadDocumentationTool(reader Reader, logger logSDK.Logger) (*ReadDocumentationTool, error) {
	if reader == nil {
		return nil, errors.New("documentation reader is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &ReadDocumentationTool{reader: reader, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *ReadDocumentationTool) Definition() mcp.Tool {
	host := t.reader.Partition().Host
	description := fmt.Sprintf(`Fetch a documentation page from %[1]s and convert it to markdown.

Long pages are returned in chunks: when the result ends with a truncation notice, call again with the start_index it names. For very long pages (more than 30,000 characters) stop once the needed information is found.

URL requirements:
- must be on the %[1]s domain
- must end with .html

The output keeps headings, lists, tables and code blocks in markdown form.`, host)

	return mcp.NewTool(
		docs.ToolReadDocumentation,
		mcp.WithDescription(description),
		mcp.WithString(
			"url",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("URL of the documentation page to read, e.g. https://%s/lambda/latest/dg/lambda-invocation.html", host)),
		),
		mcp.WithNumber(
			"max_length",
			mcp.Description("Maximum number of characters to return."),
			mcp.DefaultNumber(defaultMaxLength),
			mcp.Min(1),
			mcp.Max(maxMaxLength),
		),
		mcp.WithNumber(
			"start_index",
			mcp.Description("Return output starting at this character index, useful when a previous fetch was truncated."),
			mcp.DefaultNumber(0),
			mcp.Min(0),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle validates the arguments and returns the requested window of the page.
func (t *ReadDocumentationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := toolLoggerFromContext(ctx, t.logger)

	url, err := readRequiredString(req, "url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxLength, err := readIntArg(req, "max_length", defaultMaxLength, between(1, maxMaxLength))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	startIndex, err := readIntArg(req, "start_index", 0, atLeast(0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := t.reader.ReadDocumentation(ctx, url, maxLength, startIndex)
	if err != nil {
		logger.Warn("read_documentation rejected", zap.String("url", url), zap.Error(err))
		var validationErr *docs.ValidationError
		if errors.As(err, &validationErr) {
			return mcp.NewToolResultError(validationErr.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("read documentation failed: %v", err)), nil
	}

	return mcp.NewToolResultText(content), nil
}
