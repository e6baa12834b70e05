package calllog

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
)

// Lister is the read side of the call log.
type Lister interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
}

// NewHTTPHandler builds an HTTP handler exposing GET /api/logs.
func NewHTTPHandler(lister Lister, logger logSDK.Logger) http.Handler {
	return &httpHandler{lister: lister, logger: logger}
}

type httpHandler struct {
	lister Lister
	logger logSDK.Logger
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/logs" && r.Method == http.MethodGet:
		h.handleList(w, r)
	default:
		h.writeError(w, h.logFromCtx(r.Context()), http.StatusNotFound, "resource not found")
	}
}

func (h *httpHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	logger := h.logFromCtx(ctx)

	if h.lister == nil {
		h.writeError(w, logger, http.StatusServiceUnavailable, "call log service unavailable")
		return
	}

	q := r.URL.Query()
	opts := ListOptions{
		Page:      parseIntDefault(q.Get("page"), defaultPage),
		PageSize:  parseIntDefault(q.Get("page_size"), defaultPageSize),
		ToolName:  q.Get("tool"),
		SessionID: q.Get("session"),
		Status:    q.Get("status"),
		SortField: q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	opts.From, _ = parseDateParam(q.Get("from"))
	to, hasTime := parseDateParam(q.Get("to"))
	if !to.IsZero() && !hasTime {
		to = to.AddDate(0, 0, 1)
	}
	opts.To = to

	logger.Debug("call log list request",
		zap.String("tool", opts.ToolName),
		zap.String("session", opts.SessionID),
		zap.String("status", opts.Status),
		zap.Int("page", opts.Page),
		zap.Int("page_size", opts.PageSize),
		zap.Time("from", opts.From),
		zap.Time("to", opts.To),
	)

	result, err := h.lister.List(ctx, opts)
	if err != nil {
		logger.Error("list call logs", zap.Error(err))
		h.writeError(w, logger, http.StatusBadRequest, "failed to list call logs")
		return
	}

	entries := make([]map[string]any, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, map[string]any{
			"id":          entry.ID.String(),
			"tool":        entry.ToolName,
			"session_id":  entry.SessionID,
			"status":      entry.Status,
			"duration_ms": entry.DurationMillis,
			"parameters":  entry.Parameters,
			"error":       entry.ErrorMessage,
			"occurred_at": entry.OccurredAt,
		})
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	totalPages := int(math.Ceil(float64(result.Total) / float64(pageSize)))

	h.writeJSON(w, map[string]any{
		"data": entries,
		"pagination": map[string]any{
			"page":        opts.Page,
			"page_size":   pageSize,
			"total_items": result.Total,
			"total_pages": totalPages,
			"has_next":    opts.Page < totalPages,
			"has_prev":    opts.Page > 1 && totalPages > 0,
		},
	})
}

func (h *httpHandler) writeError(w http.ResponseWriter, logger logSDK.Logger, status int, message string) {
	if status >= 500 {
		logger.Error("call log http error", zap.Int("status", status), zap.String("message", message))
	} else {
		logger.Warn("call log http warning", zap.Int("status", status), zap.String("message", message))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": message})
}

func (h *httpHandler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func (h *httpHandler) logFromCtx(ctx context.Context) logSDK.Logger {
	if logger := gmw.GetLogger(ctx); logger != nil {
		return logger.Named("call_log_http")
	}
	if h.logger != nil {
		return h.logger
	}
	return logSDK.Shared.Named("call_log_http")
}

func parseIntDefault(value string, def int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	num, err := strconv.Atoi(trimmed)
	if err != nil {
		return def
	}
	return num
}

// parseDateParam accepts RFC3339 or a plain date. The bool reports whether a time of day was given.
func parseDateParam(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}

	if ts, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return ts.UTC(), true
	}

	const dateLayout = "2006-01-02"
	if ts, err := time.ParseInLocation(dateLayout, trimmed, time.UTC); err == nil {
		return ts, false
	}

	return time.Time{}, false
}
