package tools

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v7"
	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/aws-documentation-mcp/internal/mcp/ctxkeys"
	"github.com/Laisky/aws-documentation-mcp/library/log"
)

// toolLoggerFromContext returns a request-scoped logger when available.
func toolLoggerFromContext(ctx context.Context, fallback logSDK.Logger) logSDK.Logger {
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		return ctxLogger
	}
	if ctxLogger, ok := ctx.Value(ctxkeys.Logger).(logSDK.Logger); ok && ctxLogger != nil {
		return ctxLogger
	}
	if fallback != nil {
		return fallback
	}
	return log.Logger.Named("mcp_doc_tools")
}

func argumentsOf(req mcp.CallToolRequest) map[string]any {
	if raw, ok := req.Params.Arguments.(map[string]any); ok {
		return raw
	}
	return nil
}

// readRequiredString returns a non-blank string argument.
func readRequiredString(req mcp.CallToolRequest, key string) (string, error) {
	value, err := req.RequireString(key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		return "", errors.Errorf("%s cannot be empty", key)
	}
	return value, nil
}

// intBounds is an inclusive range for an integer argument. A nil bound is open.
type intBounds struct {
	min *int
	max *int
}

func atLeast(n int) intBounds { return intBounds{min: &n} }

func between(lo, hi int) intBounds { return intBounds{min: &lo, max: &hi} }

// readIntArg reads key as an integer within bounds, using def when it is absent.
func readIntArg(req mcp.CallToolRequest, key string, def int, bounds intBounds) (int, error) {
	raw, exists := argumentsOf(req)[key]
	if !exists || raw == nil {
		return def, nil
	}

	var value int
	switch v := raw.(type) {
	case int:
		value = v
	case int64:
		value = clampInt(float64(v))
	case float64:
		// JSON numbers decode into float64
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, errors.Errorf("%s must be an integer", key)
		}
		value = clampInt(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			value = clampInt(float64(n))
			break
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, errors.Errorf("%s must be an integer", key)
		}
		value = clampInt(f)
	default:
		return 0, errors.Errorf("%s must be an integer", key)
	}

	if bounds.min != nil && value < *bounds.min {
		return 0, errors.Errorf("%s must be greater than or equal to %d", key, *bounds.min)
	}
	if bounds.max != nil && value > *bounds.max {
		return 0, errors.Errorf("%s must be less than or equal to %d", key, *bounds.max)
	}
	return value, nil
}

// clampInt converts an integral v to int, saturating at the int range so huge
// values are not wrapped into negatives.
func clampInt(v float64) int {
	switch {
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	default:
		return int(v)
	}
}

func jsonListResult(logger logSDK.Logger, tool string, items any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(map[string]any{"result": items})
	if err != nil {
		logger.Error("encode tool result", zap.String("tool", tool), zap.Error(err))
		return mcp.NewToolResultError("failed to encode " + tool + " response")
	}
	return result
}
