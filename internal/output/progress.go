package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/feedshot/feedshot/internal/metrics"
)

// ProgressReporter displays real-time progress updates.
type ProgressReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(collector *metrics.Collector, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		start:     time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			elapsed := time.Since(p.start)
			stats := p.collector.Stats(elapsed)
			line := fmt.Sprintf("\rRequests: %d | Successes: %d | Failures: %d | RPS: %.1f",
				stats.Total, stats.Successes, stats.Failures, stats.RequestsPerSec)
			if name, sc, ok := topScenarioSnapshot(stats); ok && stats.Total > 0 {
				share := (float64(sc.Total) / float64(stats.Total)) * 100
				line += fmt.Sprintf(" | Top Scenario: %s (%.0f%%)", name, share)
			}
			fmt.Fprint(p.writer, line)
		case <-p.done:
			return
		}
	}
}

func topScenarioSnapshot(stats metrics.Stats) (string, metrics.ScenarioStats, bool) {
	if len(stats.Scenarios) == 0 {
		return "", metrics.ScenarioStats{}, false
	}
	top := ""
	for name, sc := range stats.Scenarios {
		if top == "" || sc.Total > stats.Scenarios[top].Total ||
			(sc.Total == stats.Scenarios[top].Total && name < top) {
			top = name
		}
	}
	return top, stats.Scenarios[top], true
}
