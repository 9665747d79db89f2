package util

import "strings"

// TruncateForLog shortens the provided string to the specified rune limit,
// appending an ellipsis when truncated. Prompts and model replies can be
// large; log lines carry a preview only.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit]) + "..."
}
