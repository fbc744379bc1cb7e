package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/feedshot/feedshot/internal/feed"
	"github.com/feedshot/feedshot/internal/metrics"
)

// scenarioRequester multiplexes invocations round-robin across the
// configured scenarios and records every classified outcome.
type scenarioRequester struct {
	steps     []step
	collector *metrics.Collector
	next      atomic.Uint64
}

func newScenarioRequester(steps []step, collector *metrics.Collector) *scenarioRequester {
	return &scenarioRequester{steps: steps, collector: collector}
}

func (s *scenarioRequester) Do(ctx context.Context, inv feed.Invocation) error {
	if ctx == nil {
		ctx = context.Background()
	}

	current := s.steps[0]
	if len(s.steps) > 1 {
		current = s.steps[(s.next.Add(1)-1)%uint64(len(s.steps))]
	}

	start := time.Now()
	outcome := current.executor.Do(ctx, inv)
	s.collector.RecordOutcome(current.label, time.Since(start), outcome)

	if !outcome.OK {
		return &invocationError{scenario: current.label, category: outcome.StatusCategory, message: outcome.Message}
	}
	return nil
}

// invocationError surfaces a failed outcome to the runner's error count
// and any logging middleware.
type invocationError struct {
	scenario string
	category string
	message  string
}

func (e *invocationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.scenario, e.category, e.message)
}

type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[feedshot] request failed: %v\n", err)
}
