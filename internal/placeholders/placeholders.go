// Package placeholders rewrites template strings using a data record.
// Tokens look like {ColumnName} and match record columns
// case-insensitively. Substitution is a single pass: values are inserted
// literally and never re-scanned, so a value containing a brace sequence
// cannot trigger further replacement.
package placeholders

import (
	"regexp"

	"github.com/feedshot/feedshot/internal/datasource"
)

var tokenPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Apply replaces every {Column} token whose name matches a record column.
// Tokens with no matching column are left verbatim. Input without tokens
// is returned unchanged.
func Apply(text string, rec datasource.Record) string {
	if text == "" {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := rec.Get(name); ok {
			return value
		}
		return match
	})
}

// ApplyToMap substitutes every value of a header-style map against the
// same record. Keys are never substituted.
func ApplyToMap(values map[string]string, rec datasource.Record) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = Apply(value, rec)
	}
	return out
}
