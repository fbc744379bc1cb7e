// Package metrics provides metrics collection and aggregation for load runs.
//
// The metrics package collects latency measurements, success/failure
// counts, and per-scenario status breakdowns during a run. Latency
// percentiles come from an HDR histogram so memory stays bounded no
// matter how long the run.
//
// # Collector
//
// The central [Collector] type aggregates outcomes from all workers:
//
//	collector := metrics.NewCollector()
//
//	// Record a classified invocation
//	collector.RecordOutcome("fetch-post", latency, outcome)
//
//	// Get aggregated statistics
//	stats := collector.Stats(elapsed)
//
// # Statistics
//
// The [Stats] type provides:
//   - Request counts (total, successes, failures) and bytes read
//   - Latency percentiles (P50, P90, P99)
//   - Requests per second (RPS)
//   - Per-scenario totals and status-category buckets
//
// # Thread Safety
//
// It's safe to call RecordOutcome from multiple goroutines.
package metrics
