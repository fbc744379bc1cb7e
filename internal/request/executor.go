// Package request turns a declarative request template plus an optional
// data feed into one classified HTTP call per invocation. The executor
// holds no mutable state of its own: the feed owns selection state and
// the template is read-only, so Do is safe from any number of workers.
package request

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/feedshot/feedshot/internal/datasource"
	"github.com/feedshot/feedshot/internal/feed"
	"github.com/feedshot/feedshot/internal/placeholders"
)

// bodyContentType is attached whenever a body template is configured.
const bodyContentType = "application/json"

// Request is the fully substituted call handed to the transport.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte

	// Label identifies the step in traces and transport diagnostics.
	Label string
}

// Response is what the transport observed from the wire.
type Response struct {
	StatusCode int
	BodyBytes  int64
}

// Transport performs the actual network send. Implementations must honor
// context cancellation: when the executor's timeout fires, the in-flight
// call is cancelled, not abandoned.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Executor binds one template to its optional feed and a transport.
type Executor struct {
	tmpl      *Template
	feed      *feed.Feed
	transport Transport
	log       *zap.Logger
}

// NewExecutor validates the template and wires the invocation pipeline.
// The feed may be nil, in which case substitution is skipped entirely.
func NewExecutor(tmpl *Template, f *feed.Feed, transport Transport, log *zap.Logger) (*Executor, error) {
	if tmpl == nil {
		return nil, errors.New("request template is required")
	}
	tmpl.Normalize()
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{tmpl: tmpl, feed: f, transport: transport, log: log}, nil
}

// callResult is the tagged outcome of one dispatch: either the transport
// completed (possibly with an error) or the timeout fired first.
type callResult struct {
	timedOut bool
	status   int
	size     int64
	err      error
}

// Do executes one invocation: select a record, substitute, dispatch,
// classify. The single record returned by the feed is held for the whole
// invocation; URL, headers and body all substitute from it.
func (e *Executor) Do(ctx context.Context, inv feed.Invocation) Outcome {
	var rec datasource.Record
	hasRecord := false
	if e.feed != nil {
		rec = e.feed.GetNext(inv)
		hasRecord = true
	}

	req := e.buildRequest(rec, hasRecord)
	res := e.dispatch(ctx, req)
	return e.classify(inv, res)
}

func (e *Executor) buildRequest(rec datasource.Record, hasRecord bool) *Request {
	url := e.tmpl.URL
	body := e.tmpl.Body
	headerValues := e.tmpl.Headers
	if hasRecord {
		url = placeholders.Apply(url, rec)
		body = placeholders.Apply(body, rec)
		headerValues = placeholders.ApplyToMap(e.tmpl.Headers, rec)
	}

	header := make(http.Header, len(headerValues)+1)
	for name, value := range headerValues {
		header.Set(name, value)
	}

	req := &Request{
		Method: e.tmpl.Method,
		URL:    url,
		Header: header,
		Label:  e.tmpl.Label(),
	}
	if body != "" {
		req.Body = []byte(body)
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", bodyContentType)
		}
	}
	return req
}

func (e *Executor) dispatch(ctx context.Context, req *Request) callResult {
	ctx, cancel := context.WithTimeout(ctx, e.tmpl.Timeout)
	defer cancel()

	resp, err := e.transport.Send(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return callResult{timedOut: true}
		}
		return callResult{err: err}
	}
	return callResult{status: resp.StatusCode, size: resp.BodyBytes}
}

func (e *Executor) classify(inv feed.Invocation, res callResult) Outcome {
	switch {
	case res.timedOut:
		e.log.Warn("request timed out",
			zap.String("scenario", e.tmpl.Label()),
			zap.Int("worker", inv.Worker),
			zap.Uint64("iteration", inv.Iteration),
			zap.Duration("timeout", e.tmpl.Timeout),
		)
		return Outcome{
			OK:             false,
			StatusCategory: StatusTimeout,
			Message:        fmt.Sprintf("no response within %s", e.tmpl.Timeout),
		}

	case res.err != nil:
		return Outcome{
			OK:             false,
			StatusCategory: errorCategory(res.err),
			Message:        res.err.Error(),
		}

	case e.tmpl.ExpectedStatus != 0 && res.status != e.tmpl.ExpectedStatus:
		return Outcome{
			OK:             false,
			StatusCategory: strconv.Itoa(res.status),
			SizeBytes:      res.size,
			Message: fmt.Sprintf("expected status %d, got %d",
				e.tmpl.ExpectedStatus, res.status),
		}

	default:
		e.log.Debug("request completed",
			zap.String("scenario", e.tmpl.Label()),
			zap.Int("worker", inv.Worker),
			zap.Uint64("iteration", inv.Iteration),
			zap.Int("status", res.status),
			zap.Int64("bytes", res.size),
		)
		return Outcome{
			OK:             true,
			StatusCategory: strconv.Itoa(res.status),
			SizeBytes:      res.size,
		}
	}
}

// Template exposes the executor's template for reporting.
func (e *Executor) Template() *Template {
	return e.tmpl
}
