// Package output renders run summaries as text, JSON or YAML, to stdout
// or to a lock-guarded file.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/feedshot/feedshot/internal/metrics"
)

// Format names a report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Report is the complete run summary: a unique run ID plus the
// aggregated statistics.
type Report struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Stats     metrics.Stats `json:"stats" yaml:"stats"`
}

// NewReport stamps the stats with a fresh ULID run identifier.
func NewReport(startedAt time.Time, stats metrics.Stats) Report {
	return Report{
		RunID:     ulid.Make().String(),
		StartedAt: startedAt.UTC(),
		Stats:     stats,
	}
}

// Render writes the report in the requested format.
func (r Report) Render(w io.Writer, format Format) error {
	switch format {
	case FormatText, "":
		PrintReport(w, r)
		return nil
	case FormatJSON:
		return PrintJSONReport(w, r)
	case FormatYAML:
		return PrintYAMLReport(w, r)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, report Report) {
	stats := report.Stats
	fmt.Fprintln(w, "\n--- Load Test Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", report.RunID)
	fmt.Fprintf(w, "Total Requests:    %d\n", stats.Total)
	fmt.Fprintf(w, "Successful:        %d\n", stats.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	fmt.Fprintf(w, "Bytes Read:        %d\n", stats.BytesRead)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", stats.RequestsPerSec)
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)

	if len(stats.StatusBuckets) > 0 {
		fmt.Fprintln(w, "\nStatus Buckets:")
		for _, row := range stats.StatusBuckets {
			fmt.Fprintf(w, "  %s / %s: %d\n", row.Scenario, metrics.CategoryLabel(row.Category), row.Count)
		}
	}

	if len(stats.Scenarios) > 0 {
		fmt.Fprintln(w, "\nScenario Breakdown:")
		names := make([]string, 0, len(stats.Scenarios))
		for name := range stats.Scenarios {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if stats.Scenarios[names[i]].Total == stats.Scenarios[names[j]].Total {
				return names[i] < names[j]
			}
			return stats.Scenarios[names[i]].Total > stats.Scenarios[names[j]].Total
		})
		for _, name := range names {
			sc := stats.Scenarios[name]
			share := 0.0
			if stats.Total > 0 {
				share = (float64(sc.Total) / float64(stats.Total)) * 100
			}
			fmt.Fprintf(w, "  - %s: total=%d (%.1f%%), failures=%d\n", name, sc.Total, share, sc.Failures)
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, report Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
