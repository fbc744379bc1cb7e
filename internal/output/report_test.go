package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/feedshot/feedshot/internal/metrics"
	"github.com/feedshot/feedshot/internal/request"
)

func sampleReport(t *testing.T) Report {
	t.Helper()
	c := metrics.NewCollector()
	c.RecordOutcome("fetch-post", 10*time.Millisecond, request.Outcome{OK: true, StatusCategory: "200", SizeBytes: 256})
	c.RecordOutcome("fetch-post", 20*time.Millisecond, request.Outcome{OK: true, StatusCategory: "200", SizeBytes: 256})
	c.RecordOutcome("create-post", 30*time.Millisecond, request.Outcome{
		StatusCategory: request.StatusTimeout,
		Message:        "no response within 5s",
	})
	return NewReport(time.Now(), c.Stats(2*time.Second))
}

func TestPrintReportBasic(t *testing.T) {
	report := sampleReport(t)

	var buf bytes.Buffer
	PrintReport(&buf, report)

	output := buf.String()
	for _, want := range []string{
		"Total Requests",
		"Run ID",
		report.RunID,
		"Status Buckets:",
		"fetch-post / HTTP 200 OK: 2",
		"create-post / Timed out: 1",
		"Scenario Breakdown:",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("text report missing %q:\n%s", want, output)
		}
	}
}

func TestReportRunIDsUnique(t *testing.T) {
	a := NewReport(time.Now(), metrics.Stats{})
	b := NewReport(time.Now(), metrics.Stats{})
	if a.RunID == "" || a.RunID == b.RunID {
		t.Errorf("run IDs not unique: %q vs %q", a.RunID, b.RunID)
	}
}

func TestPrintJSONReport(t *testing.T) {
	report := sampleReport(t)

	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, report); err != nil {
		t.Fatalf("PrintJSONReport failed: %v", err)
	}

	var parsed struct {
		RunID string `json:"run_id"`
		Stats struct {
			Total         int64                    `json:"total"`
			StatusBuckets []metrics.StatusBucket   `json:"status_buckets"`
			Scenarios     map[string]metrics.ScenarioStats `json:"scenarios"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal JSON report: %v", err)
	}
	if parsed.RunID != report.RunID {
		t.Errorf("run_id = %q, want %q", parsed.RunID, report.RunID)
	}
	if parsed.Stats.Total != 3 {
		t.Errorf("total = %d, want 3", parsed.Stats.Total)
	}
	if len(parsed.Stats.StatusBuckets) != 2 {
		t.Errorf("status_buckets = %d rows, want 2", len(parsed.Stats.StatusBuckets))
	}
	if parsed.Stats.Scenarios["fetch-post"].Total != 2 {
		t.Errorf("scenarios[fetch-post].total = %d, want 2", parsed.Stats.Scenarios["fetch-post"].Total)
	}
}

func TestPrintYAMLReport(t *testing.T) {
	report := sampleReport(t)

	var buf bytes.Buffer
	if err := PrintYAMLReport(&buf, report); err != nil {
		t.Fatalf("PrintYAMLReport failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal YAML report: %v", err)
	}
	if parsed["run_id"] != report.RunID {
		t.Errorf("run_id = %v, want %q", parsed["run_id"], report.RunID)
	}
	if _, ok := parsed["stats"]; !ok {
		t.Error("YAML report missing stats block")
	}
}

func TestRenderDispatch(t *testing.T) {
	report := sampleReport(t)

	for _, format := range []Format{FormatText, FormatJSON, FormatYAML, ""} {
		var buf bytes.Buffer
		if err := report.Render(&buf, format); err != nil {
			t.Errorf("Render(%q) error = %v", format, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Render(%q) wrote nothing", format)
		}
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, Format("xml")); err == nil {
		t.Error("Render(xml) error = nil, want unsupported format")
	}
}
