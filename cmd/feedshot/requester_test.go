package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/feedshot/feedshot/internal/feed"
	"github.com/feedshot/feedshot/internal/metrics"
	"github.com/feedshot/feedshot/internal/request"
	"github.com/feedshot/feedshot/internal/runner"
)

var _ runner.Requester = (*scenarioRequester)(nil)

type stubTransport struct {
	status int
}

func (s *stubTransport) Send(_ context.Context, _ *request.Request) (*request.Response, error) {
	return &request.Response{StatusCode: s.status, BodyBytes: 10}, nil
}

func newTestStep(t *testing.T, name string, transport request.Transport) step {
	t.Helper()
	tmpl := &request.Template{Name: name, Method: http.MethodGet, URL: "https://example.com"}
	executor, err := request.NewExecutor(tmpl, nil, transport, zap.NewNop())
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}
	return step{label: tmpl.Label(), executor: executor}
}

func TestScenarioRequesterRoundRobin(t *testing.T) {
	collector := metrics.NewCollector()
	req := newScenarioRequester([]step{
		newTestStep(t, "a", &stubTransport{status: 200}),
		newTestStep(t, "b", &stubTransport{status: 200}),
	}, collector)

	for i := 0; i < 6; i++ {
		if err := req.Do(context.Background(), feed.Invocation{Worker: 0, Iteration: uint64(i)}); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
	}

	stats := collector.Stats(0)
	if stats.Scenarios["a"].Total != 3 || stats.Scenarios["b"].Total != 3 {
		t.Errorf("scenario totals = %+v, want 3 each", stats.Scenarios)
	}
}

func TestScenarioRequesterSurfacesFailures(t *testing.T) {
	collector := metrics.NewCollector()
	tmpl := &request.Template{Name: "strict", URL: "https://example.com", ExpectedStatus: 200}
	executor, err := request.NewExecutor(tmpl, nil, &stubTransport{status: 404}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}
	req := newScenarioRequester([]step{{label: "strict", executor: executor}}, collector)

	doErr := req.Do(context.Background(), feed.Invocation{})
	if doErr == nil {
		t.Fatal("Do() error = nil, want status mismatch")
	}
	var invErr *invocationError
	if !errors.As(doErr, &invErr) {
		t.Fatalf("Do() error type = %T, want *invocationError", doErr)
	}
	if invErr.category != "404" || !strings.Contains(invErr.Error(), "strict") {
		t.Errorf("error = %v, want 404 category under scenario strict", invErr)
	}

	stats := collector.Stats(0)
	if stats.Failures != 1 {
		t.Errorf("failures = %d, want 1", stats.Failures)
	}
}
