// Package httptransport sends substituted requests over net/http. It is
// the production implementation of the executor's Transport contract;
// connection pooling and keep-alive tuning live here, retry policy does
// not.
package httptransport

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/feedshot/feedshot/internal/request"
	"github.com/feedshot/feedshot/internal/tracing"
)

// Client implements request.Transport over a pooled http.Client. The
// per-invocation timeout arrives through the context, so the underlying
// client carries no timeout of its own.
type Client struct {
	http      *http.Client
	tracer    trace.Tracer
	propagate bool
}

// Option configures a Client.
type Option func(*Client)

// WithTracer records one span per dispatched request.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithPropagation injects W3C trace context headers into every
// dispatched request.
func WithPropagation(enabled bool) Option {
	return func(c *Client) {
		c.propagate = enabled
	}
}

// New builds a transport with pooling suited to high-frequency load.
func New(opts ...Option) *Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	c := &Client{
		http:   &http.Client{Transport: transport},
		tracer: noop.NewTracerProvider().Tracer("feedshot"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send dispatches one request and drains the response body to measure
// the payload size. Cancelling ctx cancels the in-flight call.
func (c *Client) Send(ctx context.Context, req *request.Request) (*request.Response, error) {
	ctx, span := c.tracer.Start(ctx, req.Label, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.full", req.URL),
	)

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}
	if c.propagate {
		tracing.InjectHTTPHeaders(ctx, httpReq.Header)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	size, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return &request.Response{StatusCode: resp.StatusCode, BodyBytes: size}, nil
}
