package request

import (
	"fmt"
	"strings"
)

// StatusTimeout is the status category reported when the transport does
// not complete within the configured timeout. It is a fixed sentinel,
// distinct from any numeric HTTP status.
const StatusTimeout = "TIMEOUT"

// Outcome is the classified result of one invocation, consumed by the
// driver for statistics and reporting.
type Outcome struct {
	// OK is true when the transport completed in time and the status
	// matched the expectation (or none was configured).
	OK bool

	// StatusCategory is a numeric HTTP status rendered as a string, the
	// TIMEOUT sentinel, or a sanitized transport error class.
	StatusCategory string

	// SizeBytes is the observed response payload size.
	SizeBytes int64

	// Message explains failed outcomes; empty on success.
	Message string
}

// sanitizeCategory normalizes a raw category string into the
// UPPER_SNAKE form used in reports.
func sanitizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return "UNKNOWN"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", ".", "_", "-", "_")
	normalized := strings.Trim(strings.ToUpper(replacer.Replace(trimmed)), "_")
	if normalized == "" {
		return "UNKNOWN"
	}
	return normalized
}

// errorCategory derives a status category from a transport-level error
// by its concrete type name.
func errorCategory(err error) string {
	if err == nil {
		return ""
	}
	typeName := fmt.Sprintf("%T", err)
	typeName = strings.TrimPrefix(typeName, "*")
	if idx := strings.LastIndex(typeName, "/"); idx != -1 {
		typeName = typeName[idx+1:]
	}
	if idx := strings.LastIndex(typeName, "."); idx != -1 {
		typeName = typeName[idx+1:]
	}
	return sanitizeCategory(typeName)
}
