package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/Laisky/aws-documentation-mcp/internal/mcp/calllog"
	"github.com/Laisky/aws-documentation-mcp/internal/mcp/ctxkeys"
	"github.com/Laisky/aws-documentation-mcp/library/log"
)

// wrapTool attaches a per-call logger to the context and records the invocation.
func (s *Server) wrapTool(name string, handle srv.ToolHandlerFunc) srv.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := sessionIDFromContext(ctx)
		logger := s.logger.Named("tool").With(
			zap.String("tool", name),
			zap.String("session_id", sessionID),
		)
		failures := &softFailures{}
		ctx = context.WithValue(ctx, ctxkeys.Logger, logger)
		ctx = context.WithValue(ctx, ctxkeys.SoftFailures, failures)
		args := argumentsMap(req.Params.Arguments)

		start := time.Now().UTC()
		result, err := handle(ctx, req)
		duration := time.Since(start)
		logger.Debug("mcp tool finished",
			zap.Duration("cost", duration),
			zap.Bool("is_error", err != nil || (result != nil && result.IsError)),
			zap.Int("soft_failures", failures.len()))

		s.recordToolInvocation(ctx, name, sessionID, args, start, duration, result, err, failures.messages())
		if err != nil {
			return result, errors.WithStack(err)
		}
		return result, nil
	}
}

// LoggerFromContext retrieves the per-call logger from the MCP context.
// Falls back to a shared logger if none is present in context.
func LoggerFromContext(ctx context.Context) logSDK.Logger {
	if logger, ok := ctx.Value(ctxkeys.Logger).(logSDK.Logger); ok && logger != nil {
		return logger
	}
	return log.Logger.Named("mcp_fallback")
}

func sessionIDFromContext(ctx context.Context) string {
	if session := srv.ClientSessionFromContext(ctx); session != nil {
		return session.SessionID()
	}
	return ""
}

// recordToolInvocation stores one call. reported holds the messages the
// documentation service reported while producing a success-shaped result.
func (s *Server) recordToolInvocation(ctx context.Context, toolName, sessionID string, args map[string]any, startedAt time.Time, duration time.Duration, result *mcp.CallToolResult, invokeErr error, reported []string) {
	if s.callLogger == nil {
		return
	}

	status := calllog.StatusSuccess
	errorMessage := ""

	if invokeErr != nil {
		status = calllog.StatusError
		errorMessage = invokeErr.Error()
	}

	if result != nil && result.IsError {
		status = calllog.StatusError
		if msg := toolErrorMessage(result); msg != "" {
			if errorMessage == "" {
				errorMessage = msg
			} else {
				errorMessage = fmt.Sprintf("%s | %s", errorMessage, msg)
			}
		}
	}

	if status == calllog.StatusSuccess && len(reported) > 0 {
		status = calllog.StatusError
		errorMessage = strings.Join(reported, " | ")
	}

	if duration < 0 {
		duration = 0
	}

	occurredAt := startedAt.UTC()
	if startedAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	input := calllog.RecordInput{
		ToolName:     toolName,
		SessionID:    sessionID,
		Status:       status,
		Duration:     duration,
		Parameters:   cloneArguments(args),
		ErrorMessage: errorMessage,
		OccurredAt:   occurredAt,
	}

	if err := s.callLogger.Record(ctx, input); err != nil {
		s.logger.Warn("record call log", zap.Error(err), zap.String("tool", toolName))
	}
}

// softFailures is shared between the tool wrapper and ClientReporter.
type softFailures struct {
	mu   sync.Mutex
	msgs []string
}

func (f *softFailures) add(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func (f *softFailures) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func (f *softFailures) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.msgs...)
}

func cloneArguments(args map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(args))
	for key, value := range args {
		cloned[key] = value
	}
	return cloned
}

func argumentsMap(raw any) map[string]any {
	switch value := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return value
	default:
		return map[string]any{"value": value}
	}
}

func toolErrorMessage(result *mcp.CallToolResult) string {
	if result == nil || !result.IsError {
		return ""
	}
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			if txt := strings.TrimSpace(textContent.Text); txt != "" {
				return txt
			}
		}
	}
	return ""
}
