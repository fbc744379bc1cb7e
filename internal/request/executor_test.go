package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/feedshot/feedshot/internal/datasource"
	"github.com/feedshot/feedshot/internal/feed"
)

type transportFunc func(ctx context.Context, req *Request) (*Response, error)

func (f transportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

func okTransport(status int, size int64) Transport {
	return transportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{StatusCode: status, BodyBytes: size}, nil
	})
}

func blockingTransport() Transport {
	return transportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
}

func newFeed(t *testing.T, strategy feed.Strategy, rows ...[]string) *feed.Feed {
	t.Helper()
	records := make([]datasource.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, datasource.NewRecord([]string{"PostId", "Title"}, row))
	}
	f, err := feed.New(datasource.NewRecordSet("test", records), strategy)
	if err != nil {
		t.Fatalf("feed.New() error = %v", err)
	}
	return f
}

func TestExecutorSuccess(t *testing.T) {
	tmpl := &Template{URL: "https://api.example.com/posts"}
	exec, err := NewExecutor(tmpl, nil, okTransport(200, 512), nil)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	outcome := exec.Do(context.Background(), feed.Invocation{})
	if !outcome.OK {
		t.Errorf("OK = false, want true (message: %s)", outcome.Message)
	}
	if outcome.StatusCategory != "200" {
		t.Errorf("StatusCategory = %q, want \"200\"", outcome.StatusCategory)
	}
	if outcome.SizeBytes != 512 {
		t.Errorf("SizeBytes = %d, want 512", outcome.SizeBytes)
	}
}

func TestExecutorStatusMismatch(t *testing.T) {
	tmpl := &Template{URL: "https://api.example.com/posts", ExpectedStatus: 200}
	exec, err := NewExecutor(tmpl, nil, okTransport(404, 0), nil)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	outcome := exec.Do(context.Background(), feed.Invocation{})
	if outcome.OK {
		t.Error("OK = true, want false")
	}
	if outcome.StatusCategory != "404" {
		t.Errorf("StatusCategory = %q, want \"404\"", outcome.StatusCategory)
	}
	if !strings.Contains(outcome.Message, "200") || !strings.Contains(outcome.Message, "404") {
		t.Errorf("Message = %q, want both expected and actual codes named", outcome.Message)
	}
}

func TestExecutorExpectedStatusMatch(t *testing.T) {
	tmpl := &Template{URL: "https://api.example.com/posts", ExpectedStatus: 201, Method: "post"}
	exec, err := NewExecutor(tmpl, nil, okTransport(201, 10), nil)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	outcome := exec.Do(context.Background(), feed.Invocation{})
	if !outcome.OK || outcome.StatusCategory != "201" {
		t.Errorf("outcome = %+v, want ok with category 201", outcome)
	}
}

func TestExecutorTimeout(t *testing.T) {
	tmpl := &Template{URL: "https://api.example.com/slow", Timeout: 20 * time.Millisecond}
	exec, err := NewExecutor(tmpl, nil, blockingTransport(), nil)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	outcome := exec.Do(context.Background(), feed.Invocation{Worker: 1, Iteration: 4})
	if outcome.OK {
		t.Error("OK = true, want false")
	}
	if outcome.StatusCategory != StatusTimeout {
		t.Errorf("StatusCategory = %q, want %q", outcome.StatusCategory, StatusTimeout)
	}
	if !strings.Contains(outcome.Message, "20ms") {
		t.Errorf("Message = %q, want configured timeout recorded", outcome.Message)
	}
}

func TestExecutorTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	tmpl := &Template{URL: "https://api.example.com/down"}
	exec, err := NewExecutor(tmpl, nil, transportFunc(func(context.Context, *Request) (*Response, error) {
		return nil, boom
	}), nil)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	outcome := exec.Do(context.Background(), feed.Invocation{})
	if outcome.OK {
		t.Error("OK = true, want false")
	}
	if outcome.StatusCategory == StatusTimeout {
		t.Error("transport error must not classify as TIMEOUT")
	}
	if outcome.Message != "connection refused" {
		t.Errorf("Message = %q, want transport error text", outcome.Message)
	}
}

func TestExecutorSubstitutesFromSingleRecord(t *testing.T) {
	f := newFeed(t, feed.StrategyCircular,
		[]string{"1", "First"},
		[]string{"2", "Second"},
	)

	var mu sync.Mutex
	var captured []*Request
	capture := transportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		mu.Lock()
		captured = append(captured, req)
		mu.Unlock()
		return &Response{StatusCode: 200}, nil
	})

	tmpl := &Template{
		Name:    "get-post",
		Method:  "POST",
		URL:     "https://api.example.com/posts/{PostId}",
		Headers: map[string]string{"X-Title": "{Title}", "Accept": "application/json"},
		Body:    `{"id":{PostId},"title":"{Title}"}`,
	}
	exec, err := NewExecutor(tmpl, f, capture, nil)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if outcome := exec.Do(context.Background(), feed.Invocation{Worker: 0, Iteration: uint64(i)}); !outcome.OK {
			t.Fatalf("invocation %d failed: %s", i, outcome.Message)
		}
	}

	if len(captured) != 2 {
		t.Fatalf("captured %d requests, want 2", len(captured))
	}
	for i, want := range []struct{ id, title string }{{"1", "First"}, {"2", "Second"}} {
		req := captured[i]
		wantURL := "https://api.example.com/posts/" + want.id
		if req.URL != wantURL {
			t.Errorf("request %d URL = %q, want %q", i, req.URL, wantURL)
		}
		if got := req.Header.Get("X-Title"); got != want.title {
			t.Errorf("request %d X-Title = %q, want %q", i, got, want.title)
		}
		wantBody := fmt.Sprintf(`{"id":%s,"title":"%s"}`, want.id, want.title)
		if string(req.Body) != wantBody {
			t.Errorf("request %d body = %q, want %q", i, req.Body, wantBody)
		}
		if got := req.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("request %d Content-Type = %q, want application/json", i, got)
		}
		if req.Label != "get-post" {
			t.Errorf("request %d label = %q, want configured step name", i, req.Label)
		}
	}
}

func TestExecutorWithoutFeedSendsLiterals(t *testing.T) {
	var captured *Request
	capture := transportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		captured = req
		return &Response{StatusCode: 200}, nil
	})

	tmpl := &Template{
		Method: "PUT",
		URL:    "https://api.example.com/posts/{PostId}",
		Body:   `{"title":"{Title}"}`,
	}
	exec, err := NewExecutor(tmpl, nil, capture, nil)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	exec.Do(context.Background(), feed.Invocation{})
	if captured.URL != "https://api.example.com/posts/{PostId}" {
		t.Errorf("URL = %q, want literal template", captured.URL)
	}
	if string(captured.Body) != `{"title":"{Title}"}` {
		t.Errorf("body = %q, want literal template", captured.Body)
	}
	if captured.Label != "PUT https://api.example.com/posts/{PostId}" {
		t.Errorf("label = %q, want method + URL template default", captured.Label)
	}
}

func TestNewExecutorValidation(t *testing.T) {
	if _, err := NewExecutor(&Template{}, nil, okTransport(200, 0), nil); err == nil {
		t.Error("missing URL accepted, want validation error")
	}
	if _, err := NewExecutor(&Template{URL: "https://x", Method: "TRACE"}, nil, okTransport(200, 0), nil); err == nil {
		t.Error("unsupported method accepted, want validation error")
	}
	if _, err := NewExecutor(&Template{URL: "https://x"}, nil, nil, nil); err == nil {
		t.Error("nil transport accepted, want error")
	}
}

func TestTemplateDefaults(t *testing.T) {
	tmpl := &Template{URL: " https://x "}
	tmpl.Normalize()
	if tmpl.Method != "GET" {
		t.Errorf("Method = %q, want GET default", tmpl.Method)
	}
	if tmpl.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %s, want %s default", tmpl.Timeout, DefaultTimeout)
	}
	if tmpl.URL != "https://x" {
		t.Errorf("URL = %q, want trimmed", tmpl.URL)
	}
}
