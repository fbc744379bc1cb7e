package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/feedshot/feedshot/internal/datasource"
	"github.com/feedshot/feedshot/internal/feed"
	"github.com/feedshot/feedshot/internal/threshold"
)

// Config is the fully parsed run configuration: one or more request
// scenarios plus the load-control and output settings of the driver.
type Config struct {
	Scenarios []Scenario

	Concurrency  int
	Rate         int
	Duration     time.Duration
	Total        int
	ArrivalModel ArrivalModel

	Debug        bool
	OutputFormat OutputFormat
	OutputFile   string

	// Thresholds are pass/fail assertions evaluated against the final
	// run statistics, e.g. "latency:p99 < 500".
	Thresholds []string

	Tracing TracingConfig

	ConfigFile string
}

// Scenario declares one request template and its optional data source.
type Scenario struct {
	Name           string
	Method         string
	URL            string
	Headers        map[string]string
	Body           string
	BodyFile       string
	ExpectedStatus int
	Timeout        time.Duration

	Data *DataSource
}

// DataSource names the tabular backend and feed strategy for a scenario.
type DataSource struct {
	Kind     string
	Path     string
	Provider string
	DSN      string
	Query    string
	Strategy string
}

// Descriptor converts the configured source into a loader descriptor.
func (d *DataSource) Descriptor() datasource.Descriptor {
	return datasource.Descriptor{
		Kind:     datasource.Kind(strings.ToLower(strings.TrimSpace(d.Kind))),
		Path:     strings.TrimSpace(d.Path),
		Provider: strings.TrimSpace(d.Provider),
		DSN:      d.DSN,
		Query:    d.Query,
	}
}

// FeedStrategy resolves the configured strategy, defaulting to circular.
// Validate rejects unknown strategy names before this is consulted.
func (d *DataSource) FeedStrategy() feed.Strategy {
	if d == nil || strings.TrimSpace(d.Strategy) == "" {
		return feed.StrategyCircular
	}
	strategy, err := feed.ParseStrategy(d.Strategy)
	if err != nil {
		return feed.StrategyCircular
	}
	return strategy
}

type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// TracingConfig controls the optional OTLP trace export.
type TracingConfig struct {
	Endpoint    string
	Protocol    string
	ServiceName string
	SampleRate  float64
	Insecure    bool
	Propagate   bool
}

// Enabled reports whether tracing was configured at all.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace context headers should be
// injected into outgoing requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Enabled() && t.Propagate
}

// ValidationError aggregates every configuration issue found in one pass
// so misconfiguration is actionable in a single run.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns a copy of the individual findings.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// Validate checks the whole configuration eagerly, before any record set
// is loaded or traffic generated.
func (c Config) Validate() error {
	var issues []string

	if len(c.Scenarios) == 0 {
		issues = append(issues, "at least one scenario is required (use --help for usage information)")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Total < 0 {
		issues = append(issues, "total must be >= 0")
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be >= 0")
	}
	switch c.ArrivalModel {
	case "", ArrivalModelUniform, ArrivalModelPoisson:
	default:
		issues = append(issues, fmt.Sprintf("arrival model %q is not supported", c.ArrivalModel))
	}
	switch c.OutputFormat {
	case "", OutputText, OutputJSON, OutputYAML:
	default:
		issues = append(issues, fmt.Sprintf("output format %q is not supported (text, json, yaml)", c.OutputFormat))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing sample_rate must be between 0.0 and 1.0, got %g", c.Tracing.SampleRate))
	}
	if _, err := threshold.ParseMultiple(c.Thresholds); err != nil {
		issues = append(issues, err.Error())
	}

	seenNames := map[string]int{}
	for idx, sc := range c.Scenarios {
		issues = append(issues, validateScenario(idx, sc)...)
		name := strings.ToLower(strings.TrimSpace(sc.Name))
		if name == "" {
			continue
		}
		if prev, ok := seenNames[name]; ok {
			issues = append(issues, fmt.Sprintf("scenarios[%d]: duplicate name also defined at index %d", idx, prev))
		} else {
			seenNames[name] = idx
		}
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateScenario(idx int, sc Scenario) []string {
	var issues []string
	tag := fmt.Sprintf("scenarios[%d]", idx)

	if strings.TrimSpace(sc.URL) == "" {
		issues = append(issues, tag+": url is required")
	}
	method := strings.ToUpper(strings.TrimSpace(sc.Method))
	if method != "" && !allowedMethods[method] {
		issues = append(issues, fmt.Sprintf("%s: method %q is not one of GET, POST, PUT, PATCH, DELETE", tag, sc.Method))
	}
	if sc.ExpectedStatus != 0 && (sc.ExpectedStatus < 100 || sc.ExpectedStatus > 599) {
		issues = append(issues, fmt.Sprintf("%s: expected_status %d is not a valid HTTP status", tag, sc.ExpectedStatus))
	}
	if sc.Timeout < 0 {
		issues = append(issues, tag+": timeout must be >= 0")
	}
	if strings.TrimSpace(sc.Body) != "" && strings.TrimSpace(sc.BodyFile) != "" {
		issues = append(issues, tag+": body and body_file are mutually exclusive")
	}

	if sc.Data != nil {
		issues = append(issues, validateDataSource(tag, sc.Data)...)
	}
	return issues
}

func validateDataSource(tag string, d *DataSource) []string {
	var issues []string

	kind := strings.ToLower(strings.TrimSpace(d.Kind))
	switch kind {
	case "":
		issues = append(issues, tag+": data.kind is required (csv, json, or database)")
	case "csv", "json":
		if strings.TrimSpace(d.Path) == "" {
			issues = append(issues, fmt.Sprintf("%s: data.path is required for %s sources", tag, kind))
		}
	case "database":
		if strings.TrimSpace(d.Provider) == "" {
			issues = append(issues, tag+": data.provider is required for database sources")
		}
		if strings.TrimSpace(d.DSN) == "" {
			issues = append(issues, tag+": data.dsn is required for database sources")
		}
		if strings.TrimSpace(d.Query) == "" {
			issues = append(issues, tag+": data.query is required for database sources")
		}
	default:
		issues = append(issues, fmt.Sprintf("%s: data.kind %q is not supported (csv, json, database)", tag, d.Kind))
	}

	if strings.TrimSpace(d.Strategy) != "" {
		if _, err := feed.ParseStrategy(d.Strategy); err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", tag, err))
		}
	}
	return issues
}
