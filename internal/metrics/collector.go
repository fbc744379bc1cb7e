package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/feedshot/feedshot/internal/request"
)

// Collector records per-invocation outcomes in a thread-safe manner.
type Collector struct {
	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	successes  int64
	failures   int64
	bytes      int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
	buckets    map[string]map[string]int
	scenarios  map[string]*scenarioTally
	start      time.Time
}

type scenarioTally struct {
	total    int64
	failures int64
}

// ScenarioStats is the per-scenario slice of the summary.
type ScenarioStats struct {
	Total    int64 `json:"total" yaml:"total"`
	Failures int64 `json:"failures" yaml:"failures"`
}

// Stats represents aggregated metrics.
type Stats struct {
	Total          int64         `json:"total" yaml:"total"`
	Successes      int64         `json:"successes" yaml:"successes"`
	Failures       int64         `json:"failures" yaml:"failures"`
	BytesRead      int64         `json:"bytes_read" yaml:"bytes_read"`
	MinLatency     time.Duration `json:"-" yaml:"-"`
	MaxLatency     time.Duration `json:"-" yaml:"-"`
	MeanLatency    time.Duration `json:"-" yaml:"-"`
	P50Latency     time.Duration `json:"-" yaml:"-"`
	P90Latency     time.Duration `json:"-" yaml:"-"`
	P99Latency     time.Duration `json:"-" yaml:"-"`
	Duration       time.Duration `json:"-" yaml:"-"`
	RequestsPerSec float64       `json:"requests_per_sec" yaml:"requests_per_sec"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64 `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms" yaml:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms" yaml:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms" yaml:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms" yaml:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms" yaml:"p99_latency_ms"`
	DurationMs    float64 `json:"duration_ms" yaml:"duration_ms"`

	StatusBuckets []StatusBucket           `json:"status_buckets,omitempty" yaml:"status_buckets,omitempty"`
	Scenarios     map[string]ScenarioStats `json:"scenarios,omitempty" yaml:"scenarios,omitempty"`
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:      h,
		buckets:   make(map[string]map[string]int),
		scenarios: make(map[string]*scenarioTally),
		start:     time.Now(),
	}
}

// RecordOutcome records one classified invocation under its scenario label.
func (c *Collector) RecordOutcome(scenario string, latency time.Duration, out request.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if latency > 0 {
		us := latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}
	c.sumLatency += latency

	if c.minLatency == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}

	c.bytes += out.SizeBytes

	tally := c.scenarios[scenario]
	if tally == nil {
		tally = &scenarioTally{}
		c.scenarios[scenario] = tally
	}
	tally.total++

	if out.OK {
		c.successes++
	} else {
		c.failures++
		tally.failures++
	}

	category := out.StatusCategory
	if category == "" {
		category = "UNKNOWN"
	}
	codes := c.buckets[scenario]
	if codes == nil {
		codes = make(map[string]int)
		c.buckets[scenario] = codes
	}
	codes[category]++
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	stats := Stats{
		Total:      total,
		Successes:  c.successes,
		Failures:   c.failures,
		BytesRead:  c.bytes,
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
	}

	if total > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / total)
	}

	if c.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinLatencyMs = float64(stats.MinLatency) / float64(time.Millisecond)
	stats.MaxLatencyMs = float64(stats.MaxLatency) / float64(time.Millisecond)
	stats.MeanLatencyMs = float64(stats.MeanLatency) / float64(time.Millisecond)
	stats.P50LatencyMs = float64(stats.P50Latency) / float64(time.Millisecond)
	stats.P90LatencyMs = float64(stats.P90Latency) / float64(time.Millisecond)
	stats.P99LatencyMs = float64(stats.P99Latency) / float64(time.Millisecond)

	stats.Duration = elapsed
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && total > 0 {
		stats.RequestsPerSec = float64(total) / elapsed.Seconds()
	}

	stats.StatusBuckets = FlattenStatusBuckets(c.buckets)
	if len(c.scenarios) > 0 {
		stats.Scenarios = make(map[string]ScenarioStats, len(c.scenarios))
		for name, tally := range c.scenarios {
			stats.Scenarios[name] = ScenarioStats{Total: tally.total, Failures: tally.failures}
		}
	}

	return stats
}

// StatusBreakdown returns a copy of the per-scenario category counts.
func (c *Collector) StatusBreakdown() map[string]map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]map[string]int, len(c.buckets))
	for scenario, codes := range c.buckets {
		inner := make(map[string]int, len(codes))
		for code, count := range codes {
			inner[code] = count
		}
		result[scenario] = inner
	}
	return result
}
