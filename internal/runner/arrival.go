package runner

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type arrivalController interface {
	Wait(ctx context.Context) error
}

func newArrivalController(opt Options) arrivalController {
	switch opt.ArrivalModel {
	case ArrivalModelPoisson:
		var sampler func() float64
		if opt.PoissonSampler != nil {
			sampler = opt.PoissonSampler
		} else {
			seeded := rand.New(rand.NewSource(opt.RandomSeed))
			sampler = seeded.ExpFloat64
		}
		ctrl := &poissonArrival{sample: sampler}
		ctrl.setRate(float64(opt.RatePerSecond))
		return ctrl
	default:
		return &uniformArrival{limiter: opt.LimiterFactory(opt.RatePerSecond)}
	}
}

// uniformArrival delegates pacing to a rate.Limiter (uniform spacing).
type uniformArrival struct {
	limiter *rate.Limiter
}

func (u *uniformArrival) Wait(ctx context.Context) error {
	if u == nil || u.limiter == nil {
		return nil
	}
	return u.limiter.Wait(ctx)
}

// poissonArrival samples exponential inter-arrival times to approximate
// a Poisson process.
type poissonArrival struct {
	mu     sync.Mutex
	rate   float64
	sample func() float64
}

func (p *poissonArrival) Wait(ctx context.Context) error {
	delay := p.nextDelay()
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *poissonArrival) setRate(rps float64) {
	if p == nil {
		return
	}
	if rps < 0 {
		rps = 0
	}
	p.mu.Lock()
	p.rate = rps
	p.mu.Unlock()
}

func (p *poissonArrival) nextDelay() time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rate <= 0 || p.sample == nil {
		return 0
	}

	value := p.sample()
	delay := float64(time.Second) * value / p.rate
	if delay > math.MaxInt64 {
		delay = math.MaxInt64
	}
	return time.Duration(delay)
}
