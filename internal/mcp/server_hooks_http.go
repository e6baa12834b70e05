package mcp

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

// httpLogBodyLimit caps how many body bytes are kept for debug logs.
const httpLogBodyLimit = 8 << 10

func newMCPHooks(logger logSDK.Logger) *srv.Hooks {
	if logger == nil {
		return nil
	}

	hooks := &srv.Hooks{}

	hooks.AddBeforeAny(func(ctx context.Context, id any, method mcp.MCPMethod, message any) {
		fields := hookLogFields(ctx, id, method, message)
		if message != nil {
			fields = append(fields, zap.String("request", compactHookPayload(message)))
		}
		logger.Debug("mcp request received", fields...)
	})

	hooks.AddOnSuccess(func(ctx context.Context, id any, method mcp.MCPMethod, message any, result any) {
		fields := hookLogFields(ctx, id, method, message)
		if result != nil {
			fields = append(fields, zap.String("response", compactHookPayload(result)))
		}
		logger.Info("mcp request succeeded", fields...)
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		fields := hookLogFields(ctx, id, method, message)
		fields = append(fields, zap.Error(err))
		if isUnsupportedCapabilityProbe(method, err) {
			logger.Debug("mcp request failed (unsupported capability)", fields...)
			return
		}
		logger.Error("mcp request failed", fields...)
	})

	hooks.AddOnRegisterSession(func(ctx context.Context, session srv.ClientSession) {
		logger.Info("mcp session registered", zap.String("session_id", session.SessionID()))
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session srv.ClientSession) {
		logger.Info("mcp session unregistered", zap.String("session_id", session.SessionID()))
	})

	return hooks
}

// isUnsupportedCapabilityProbe reports whether err is a client probing for
// resources or prompts, which this server does not offer.
func isUnsupportedCapabilityProbe(method mcp.MCPMethod, err error) bool {
	if err == nil {
		return false
	}
	errText := strings.ToLower(err.Error())
	switch method {
	case mcp.MethodResourcesList, mcp.MethodResourcesTemplatesList:
		return strings.Contains(errText, "resources not supported")
	case mcp.MethodPromptsList:
		return strings.Contains(errText, "prompts not supported")
	default:
		return false
	}
}

func hookLogFields(ctx context.Context, id any, method mcp.MCPMethod, message any) []zap.Field {
	fields := []zap.Field{
		zap.Any("request_id", id),
		zap.String("method", string(method)),
	}

	if session := srv.ClientSessionFromContext(ctx); session != nil {
		fields = append(fields, zap.String("session_id", session.SessionID()))
	}
	if call, ok := message.(*mcp.CallToolRequest); ok && call != nil {
		fields = append(fields, zap.String("tool", call.Params.Name))
	}

	return fields
}

// withHTTPLogging logs each HTTP exchange of the streamable transport at debug level.
func withHTTPLogging(next http.Handler, logger logSDK.Logger) http.Handler {
	if next == nil {
		return nil
	}
	if logger == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startAt := time.Now()
		body, truncated, err := peekRequestBody(r, httpLogBodyLimit)
		if err != nil {
			logger.Error("read request body", zap.Error(err))
		}
		sessionID := strings.TrimSpace(r.Header.Get(srv.HeaderKeySessionID))

		logger.Debug("incoming http request",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.String("body", compactMCPBody(body)),
			zap.Bool("body_truncated", truncated),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("mcp_session_id", sessionID),
		)

		rec := newRecordingResponseWriter(w, httpLogBodyLimit)
		next.ServeHTTP(rec, r)

		logger.Debug("outgoing http response",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.Int("status", rec.Status()),
			zap.String("body", compactMCPBody(rec.buffer.String())),
			zap.Bool("body_truncated", rec.truncated),
			zap.Duration("cost", time.Since(startAt)),
		)
	})
}

// peekRequestBody reads the request body and puts it back for the next handler.
func peekRequestBody(r *http.Request, limit int) (string, bool, error) {
	if r.Body == nil {
		return "", false, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", false, errors.Wrap(err, "read body")
	}
	if err := r.Body.Close(); err != nil {
		return "", false, errors.Wrap(err, "close body")
	}

	r.Body = io.NopCloser(bytes.NewReader(data))
	if len(data) > limit {
		return string(data[:limit]), true, nil
	}
	return string(data), false, nil
}

// recordingResponseWriter keeps the status and the first bytes of the body.
// It forwards Flush and Hijack so SSE streams keep working.
type recordingResponseWriter struct {
	http.ResponseWriter
	status    int
	buffer    bytes.Buffer
	truncated bool
	limit     int
}

func newRecordingResponseWriter(w http.ResponseWriter, limit int) *recordingResponseWriter {
	return &recordingResponseWriter{ResponseWriter: w, limit: limit}
}

func (w *recordingResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *recordingResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	remaining := w.limit - w.buffer.Len()
	switch {
	case remaining <= 0:
		w.truncated = true
	case len(b) > remaining:
		w.buffer.Write(b[:remaining])
		w.truncated = true
	default:
		w.buffer.Write(b)
	}

	return w.ResponseWriter.Write(b)
}

// Status returns the response status, 200 when the handler never set one.
func (w *recordingResponseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *recordingResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *recordingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}
