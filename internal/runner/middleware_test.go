package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/feedshot/feedshot/internal/feed"
	"github.com/feedshot/feedshot/internal/runner"
)

type countingLogger struct {
	count int
	last  error
}

func (l *countingLogger) LogFailure(err error) {
	l.count++
	l.last = err
}

type failingRequester struct {
	err error
}

func (f *failingRequester) Do(context.Context, feed.Invocation) error {
	return f.err
}

func TestWithLoggingRecordsFailures(t *testing.T) {
	wantErr := errors.New("boom")
	logger := &countingLogger{}
	req := runner.WithLogging(&failingRequester{err: wantErr}, logger)

	for i := 0; i < 3; i++ {
		if err := req.Do(context.Background(), feed.Invocation{Worker: 0, Iteration: uint64(i)}); !errors.Is(err, wantErr) {
			t.Fatalf("Do() error = %v, want %v", err, wantErr)
		}
	}
	if logger.count != 3 {
		t.Errorf("logged failures = %d, want 3", logger.count)
	}
	if !errors.Is(logger.last, wantErr) {
		t.Errorf("last logged error = %v, want %v", logger.last, wantErr)
	}
}

func TestWithLoggingSkipsSuccess(t *testing.T) {
	logger := &countingLogger{}
	req := runner.WithLogging(&failingRequester{}, logger)

	if err := req.Do(context.Background(), feed.Invocation{}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if logger.count != 0 {
		t.Errorf("logged failures = %d, want 0", logger.count)
	}
}

func TestWithLoggingNilLoggerPassthrough(t *testing.T) {
	inner := &failingRequester{}
	if got := runner.WithLogging(inner, nil); got != runner.Requester(inner) {
		t.Error("WithLogging(req, nil) should return the requester unchanged")
	}
}
