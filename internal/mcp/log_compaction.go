package mcp

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// maxLoggedStringRunes bounds each string value kept in a logged MCP payload.
// Documentation pages are large and would otherwise dominate the logs.
const maxLoggedStringRunes = 512

// compactMCPBody shortens long string values inside a JSON payload.
// Payloads that are not JSON are returned unchanged.
func compactMCPBody(raw string) string {
	if raw == "" {
		return raw
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return raw
	}
	out, err := json.Marshal(compactMCPValue(payload))
	if err != nil {
		return raw
	}
	return string(out)
}

// compactMCPValue recursively shortens nested payloads.
func compactMCPValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		output := make(map[string]any, len(v))
		for key, item := range v {
			output[key] = compactMCPValue(item)
		}
		return output
	case []any:
		result := make([]any, 0, len(v))
		for _, item := range v {
			result = append(result, compactMCPValue(item))
		}
		return result
	case string:
		return shortenString(v, maxLoggedStringRunes)
	default:
		return value
	}
}

func shortenString(s string, limit int) string {
	total := utf8.RuneCountInString(s)
	if total <= limit {
		return s
	}
	return fmt.Sprintf("%s...(%d chars omitted)", string([]rune(s)[:limit]), total-limit)
}

// compactHookPayload renders a compacted JSON string for hook logging.
func compactHookPayload(payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return compactMCPBody(string(data))
}
