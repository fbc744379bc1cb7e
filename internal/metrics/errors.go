package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"
)

var categoryAliases = map[string]string{
	"TIMEOUT": "Timed out",
	"UNKNOWN": "Unknown failure",
}

// CategoryLabel returns a human-friendly label for a status category:
// numeric HTTP codes gain their standard reason phrase, the timeout
// sentinel and sanitized error classes become readable words.
func CategoryLabel(category string) string {
	cleaned := strings.TrimSpace(category)
	if cleaned == "" {
		return "Unknown failure"
	}

	if alias, ok := categoryAliases[cleaned]; ok {
		return alias
	}

	if code, err := strconv.Atoi(cleaned); err == nil {
		if text := http.StatusText(code); text != "" {
			return fmt.Sprintf("HTTP %d %s", code, text)
		}
		return fmt.Sprintf("HTTP %d", code)
	}

	return humanizeCategory(cleaned)
}

func humanizeCategory(category string) string {
	parts := strings.Split(category, "_")
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		words = append(words, capitalize(part))
	}
	if len(words) == 0 {
		return category
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	runes := []rune(lower)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
