// Package runner provides the load driving engine for feedshot.
//
// The runner orchestrates concurrent invocation of a Requester with
// support for:
//   - Configurable concurrency levels
//   - Rate limiting (requests per second)
//   - Duration-based and count-based termination
//   - Multiple arrival models (uniform, Poisson)
//
// # Basic Usage
//
// Create a runner with options and a requester implementation:
//
//	opts := runner.Options{
//		Concurrency:   10,
//		TotalRequests: 1000,
//		Duration:      time.Minute,
//		RatePerSecond: 100,
//		Requester:     myRequester,
//	}
//	r := runner.New(opts)
//	result := r.Run(ctx)
//
// # Requester Interface
//
// The [Requester] interface defines what a runner executes:
//
//	type Requester interface {
//		Do(ctx context.Context, inv feed.Invocation) error
//	}
//
// Each worker goroutine owns a stable worker index and a monotonically
// increasing iteration counter; both travel with the invocation so feed
// strategies can pin or rotate records per worker.
//
// # Rate Limiting & Arrival Models
//
// The runner supports different arrival models for request pacing:
//   - [ArrivalModelUniform]: Requests at fixed intervals
//   - [ArrivalModelPoisson]: Requests following Poisson distribution for realistic traffic
//
// # Middleware
//
// Enhance requesters with middleware:
//   - [WithLogging]: Log request failures
package runner
