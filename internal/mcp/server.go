package mcp

import (
	"context"
	"io"
	"net/http"
	"os"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/Laisky/aws-documentation-mcp/internal/docs"
	"github.com/Laisky/aws-documentation-mcp/internal/mcp/calllog"
	"github.com/Laisky/aws-documentation-mcp/internal/mcp/ctxkeys"
	"github.com/Laisky/aws-documentation-mcp/internal/mcp/tools"
	"github.com/Laisky/aws-documentation-mcp/library/awsdocs"
	"github.com/Laisky/aws-documentation-mcp/library/log"
)

// ServerName is reported to MCP clients on initialize.
const ServerName = "awslabs.aws-documentation-mcp-server"

// reporterLoggerName tags notifications/message sent to clients.
const reporterLoggerName = "aws-documentation"

// Server wraps the MCP server state for the HTTP and stdio transports.
type Server struct {
	mcpServer  *srv.MCPServer
	handler    http.Handler
	logger     logSDK.Logger
	callLogger calllog.Recorder
	tools      []string
}

// NewServer registers the enabled tools of the service's partition.
// callLogger may be nil, in which case invocations are only logged.
func NewServer(svc *docs.Service, settings ToolsSettings, callLogger calllog.Recorder, logger logSDK.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("documentation service is required")
	}
	if logger == nil {
		logger = log.Logger
	}

	partition := svc.Partition()
	mcpServer := srv.NewMCPServer(
		ServerName,
		awsdocs.Version,
		srv.WithToolCapabilities(false),
		srv.WithLogging(),
		srv.WithInstructions(partition.Instructions),
		srv.WithRecovery(),
		srv.WithHooks(newMCPHooks(logger.Named("mcp_hooks"))),
	)

	s := &Server{
		mcpServer:  mcpServer,
		logger:     logger.Named("mcp"),
		callLogger: callLogger,
	}

	for _, name := range partition.Tools {
		if !settings.Enabled(name) {
			s.logger.Info("mcp tool disabled by configuration", zap.String("tool", name))
			continue
		}

		tool, err := s.buildTool(name, svc)
		if err != nil {
			return nil, errors.Wrapf(err, "build %s tool", name)
		}
		mcpServer.AddTool(tool.Definition(), s.wrapTool(name, tool.Handle))
		s.tools = append(s.tools, name)
	}

	if len(s.tools) == 0 {
		return nil, errors.Errorf("no mcp tool is enabled for partition %s", partition.Name)
	}

	streamable := srv.NewStreamableHTTPServer(mcpServer)
	s.handler = withHTTPLogging(streamable, s.logger.Named("http"))

	s.logger.Info("mcp server ready",
		zap.String("partition", partition.Name),
		zap.Strings("tools", s.tools))
	return s, nil
}

func (s *Server) buildTool(name string, svc *docs.Service) (tools.Tool, error) {
	toolLogger := s.logger.Named(name)
	switch name {
	case docs.ToolReadDocumentation:
		return tools.NewReadDocumentationTool(svc, toolLogger)
	case docs.ToolSearchDocumentation:
		return tools.NewSearchDocumentationTool(svc, toolLogger)
	case docs.ToolRecommend:
		return tools.NewRecommendTool(svc, toolLogger)
	case docs.ToolGetAvailableServices:
		return tools.NewGetAvailableServicesTool(svc, toolLogger)
	default:
		return nil, errors.Errorf("unknown tool %q", name)
	}
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *srv.MCPServer {
	return s.mcpServer
}

// Handler returns the HTTP handler that should be mounted to serve MCP traffic.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeStdio serves the stdio transport on the process streams until ctx is done
// or stdin is closed.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.serveStdio(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := srv.NewStdioServer(s.mcpServer)
	s.logger.Info("serving mcp over stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "serve stdio")
	}
	return nil
}

// ClientReporter sends message to the calling MCP session as an error-level
// notifications/message. It is a no-op outside an MCP request.
func ClientReporter(ctx context.Context, message string) {
	if failures, ok := ctx.Value(ctxkeys.SoftFailures).(*softFailures); ok {
		failures.add(message)
	}

	server := srv.ServerFromContext(ctx)
	if server == nil {
		return
	}

	err := server.SendNotificationToClient(ctx, "notifications/message", map[string]any{
		"level":  mcp.LoggingLevelError,
		"logger": reporterLoggerName,
		"data":   message,
	})
	if err != nil {
		LoggerFromContext(ctx).Debug("send error notification to client", zap.Error(err))
	}
}
