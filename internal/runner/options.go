package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/feedshot/feedshot/internal/feed"
)

// Requester executes a single invocation. The invocation carries the
// worker index and per-worker iteration so feed strategies can pin or
// rotate records deterministically.
type Requester interface {
	Do(ctx context.Context, inv feed.Invocation) error
}

// ArrivalModel selects how request start times are spaced.
type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// Options configure the Runner.
type Options struct {
	Concurrency   int           // number of worker goroutines
	TotalRequests int           // total requests to execute (0 means unlimited until duration/end)
	Duration      time.Duration // overall time limit (0 means no duration cap)
	RatePerSecond int           // requests per second pacing (0 means unlimited)
	ArrivalModel  ArrivalModel  // request spacing model, uniform by default
	Requester     Requester     // request executor (required)

	RandomSeed     int64                       // seed for the Poisson sampler
	PoissonSampler func() float64              // optional injection for tests
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.Duration < 0 {
		o.Duration = 0
	}
	if o.ArrivalModel == "" {
		o.ArrivalModel = ArrivalModelUniform
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
