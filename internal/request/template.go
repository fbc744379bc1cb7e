package request

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds a request when the scenario does not set one.
const DefaultTimeout = 30 * time.Second

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// Template is the declarative, pre-substitution description of one HTTP
// call. It is immutable after load and read on every invocation.
type Template struct {
	// Name is the optional human-readable step label.
	Name string

	Method  string
	URL     string
	Headers map[string]string
	Body    string

	// ExpectedStatus, when non-zero, is compared against the actual
	// response status; a mismatch classifies the outcome as failed.
	ExpectedStatus int

	Timeout time.Duration
}

// Normalize fills defaults: GET method, 30s timeout, upper-cased method.
func (t *Template) Normalize() {
	t.Method = strings.ToUpper(strings.TrimSpace(t.Method))
	if t.Method == "" {
		t.Method = "GET"
	}
	t.URL = strings.TrimSpace(t.URL)
	if t.Timeout == 0 {
		t.Timeout = DefaultTimeout
	}
}

// Validate surfaces configuration errors eagerly, before any traffic is
// generated. Call Normalize first.
func (t *Template) Validate() error {
	var issues []string
	if t.URL == "" {
		issues = append(issues, "url is required")
	}
	if !allowedMethods[t.Method] {
		issues = append(issues, fmt.Sprintf("method %q is not one of GET, POST, PUT, PATCH, DELETE", t.Method))
	}
	if t.ExpectedStatus != 0 && (t.ExpectedStatus < 100 || t.ExpectedStatus > 599) {
		issues = append(issues, fmt.Sprintf("expected_status %d is not a valid HTTP status", t.ExpectedStatus))
	}
	if t.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	for name := range t.Headers {
		if strings.TrimSpace(name) == "" {
			issues = append(issues, "header names cannot be empty")
		}
		if strings.ContainsAny(name, "\r\n") {
			issues = append(issues, fmt.Sprintf("invalid header name %q", name))
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("invalid request template %q: %s", t.Label(), strings.Join(issues, "; "))
	}
	return nil
}

// Label returns the configured step name, or a default composed from the
// method and the URL template.
func (t *Template) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return strings.TrimSpace(t.Method + " " + t.URL)
}
