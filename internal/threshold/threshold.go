// Package threshold evaluates pass/fail assertions against run
// statistics, e.g. "latency:p99 < 500" or "failures:rate < 0.01".
package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/feedshot/feedshot/internal/metrics"
)

// Threshold represents a performance assertion that can pass or fail.
type Threshold struct {
	Metric    string  // "latency", "failures", "requests"
	Aggregate string  // "p50", "p90", "p99", "mean", "min", "max", "rate", "count"
	Operator  string  // "<", "<=", ">", ">=", "=="
	Value     float64 // the value to compare against
	Raw       string  // original threshold string for display
}

// Result represents the outcome of evaluating a threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

var thresholdPattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

var latencyAggregates = map[string]func(metrics.Stats) float64{
	"p50":  func(s metrics.Stats) float64 { return s.P50LatencyMs },
	"p90":  func(s metrics.Stats) float64 { return s.P90LatencyMs },
	"p99":  func(s metrics.Stats) float64 { return s.P99LatencyMs },
	"mean": func(s metrics.Stats) float64 { return s.MeanLatencyMs },
	"min":  func(s metrics.Stats) float64 { return s.MinLatencyMs },
	"max":  func(s metrics.Stats) float64 { return s.MaxLatencyMs },
}

// Parse parses a threshold string.
// Supported formats:
//   - "latency:p99 < 500"      (latency percentile in ms; also p50, p90, mean, min, max)
//   - "failures:rate < 0.01"   (failure rate as decimal)
//   - "failures:count < 10"    (failure count)
//   - "requests:rate > 100"    (requests per second)
//   - "requests:count >= 1000" (total requests)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected metric:aggregate operator value, e.g. 'latency:p99 < 500')", s)
	}

	t := Threshold{
		Metric:    matches[1],
		Aggregate: matches[2],
		Operator:  matches[3],
		Raw:       s,
	}

	value, err := strconv.ParseFloat(matches[4], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", matches[4], err)
	}
	t.Value = value

	switch t.Metric {
	case "latency":
		if _, ok := latencyAggregates[t.Aggregate]; !ok {
			return Threshold{}, fmt.Errorf("unsupported aggregate %q for latency (supported: p50, p90, p99, mean, min, max)", t.Aggregate)
		}
	case "failures", "requests":
		if t.Aggregate != "rate" && t.Aggregate != "count" {
			return Threshold{}, fmt.Errorf("unsupported aggregate %q for %s (use 'rate' or 'count')", t.Aggregate, t.Metric)
		}
	default:
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: latency, failures, requests)", t.Metric)
	}

	switch t.Operator {
	case "<", "<=", ">", ">=", "==":
	default:
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", t.Operator)
	}

	return t, nil
}

// ParseMultiple parses multiple threshold strings, collecting every
// error so misconfiguration surfaces in one pass.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var issues []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			issues = append(issues, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(issues) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(issues, "; "))
	}

	return result, nil
}

// Evaluate checks all thresholds against the provided stats.
func Evaluate(thresholds []Threshold, stats metrics.Stats) []Result {
	if len(thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(thresholds))
	for _, t := range thresholds {
		actual := metricValue(t, stats)
		pass := compare(actual, t.Operator, t.Value)

		status := "PASS"
		if !pass {
			status = "FAIL"
		}
		results = append(results, Result{
			Threshold: t,
			Actual:    actual,
			Pass:      pass,
			Message:   fmt.Sprintf("%s %s (actual %.2f)", status, t.Raw, actual),
		})
	}
	return results
}

func metricValue(t Threshold, stats metrics.Stats) float64 {
	switch t.Metric {
	case "latency":
		return latencyAggregates[t.Aggregate](stats)
	case "failures":
		if t.Aggregate == "count" {
			return float64(stats.Failures)
		}
		if stats.Total == 0 {
			return 0
		}
		return float64(stats.Failures) / float64(stats.Total)
	case "requests":
		if t.Aggregate == "count" {
			return float64(stats.Total)
		}
		return stats.RequestsPerSec
	default:
		return 0
	}
}

func compare(actual float64, operator string, expected float64) bool {
	// Tolerate floating point noise on the inclusive comparisons.
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
