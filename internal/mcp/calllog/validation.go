package calllog

import (
	"strings"
	"unicode/utf8"

	errors "github.com/Laisky/errors/v2"
)

const (
	// maxToolNameLength caps tool name filter length.
	maxToolNameLength = 64
	// maxSessionIDLength caps session id filter length.
	maxSessionIDLength = 128
)

// sanitizeOptionalText trims input, rejects null bytes and values longer than maxLen runes.
func sanitizeOptionalText(input string, maxLen int, field string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", nil
	}
	if strings.ContainsRune(trimmed, '\x00') {
		return "", errors.Errorf("%s contains invalid null byte", field)
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", errors.Errorf("%s exceeds max length %d", field, maxLen)
	}
	return trimmed, nil
}

func sanitizeStatus(input string) (string, error) {
	switch status := strings.ToLower(strings.TrimSpace(input)); status {
	case "", StatusSuccess, StatusError:
		return status, nil
	default:
		return "", errors.Errorf("unknown status %q", input)
	}
}
