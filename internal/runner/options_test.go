package runner

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestNormalizeDefaults(t *testing.T) {
	opts := Options{}
	opts.normalize()

	if opts.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want one worker by default", opts.Concurrency)
	}
	if opts.ArrivalModel != ArrivalModelUniform {
		t.Errorf("ArrivalModel = %q, want uniform pacing by default", opts.ArrivalModel)
	}
	if opts.RandomSeed == 0 {
		t.Error("RandomSeed = 0, want a clock-derived seed")
	}
	if opts.LimiterFactory == nil {
		t.Error("LimiterFactory = nil, want the rate.NewLimiter default")
	}
}

func TestNormalizeClampsBounds(t *testing.T) {
	tests := []struct {
		name string
		in   Options
		want Options
	}{
		{
			name: "negative load bounds reset to unlimited",
			in:   Options{Concurrency: -3, TotalRequests: -7, RatePerSecond: -1, Duration: -time.Second},
			want: Options{Concurrency: 1, TotalRequests: 0, RatePerSecond: 0, Duration: 0},
		},
		{
			name: "zero concurrency still gets one worker",
			in:   Options{Concurrency: 0, TotalRequests: 50},
			want: Options{Concurrency: 1, TotalRequests: 50},
		},
		{
			name: "configured bounds survive untouched",
			in:   Options{Concurrency: 8, TotalRequests: 200, RatePerSecond: 40, Duration: time.Minute},
			want: Options{Concurrency: 8, TotalRequests: 200, RatePerSecond: 40, Duration: time.Minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.in
			opts.normalize()

			if opts.Concurrency != tt.want.Concurrency {
				t.Errorf("Concurrency = %d, want %d", opts.Concurrency, tt.want.Concurrency)
			}
			if opts.TotalRequests != tt.want.TotalRequests {
				t.Errorf("TotalRequests = %d, want %d", opts.TotalRequests, tt.want.TotalRequests)
			}
			if opts.RatePerSecond != tt.want.RatePerSecond {
				t.Errorf("RatePerSecond = %d, want %d", opts.RatePerSecond, tt.want.RatePerSecond)
			}
			if opts.Duration != tt.want.Duration {
				t.Errorf("Duration = %v, want %v", opts.Duration, tt.want.Duration)
			}
		})
	}
}

func TestNormalizeKeepsInjectedHooks(t *testing.T) {
	sampled := false
	opts := Options{
		ArrivalModel:   ArrivalModelPoisson,
		RandomSeed:     42,
		PoissonSampler: func() float64 { sampled = true; return 1 },
		LimiterFactory: func(rps int) *rate.Limiter { return rate.NewLimiter(rate.Inf, 1) },
	}
	opts.normalize()

	if opts.ArrivalModel != ArrivalModelPoisson {
		t.Errorf("ArrivalModel = %q, want poisson preserved", opts.ArrivalModel)
	}
	if opts.RandomSeed != 42 {
		t.Errorf("RandomSeed = %d, want the injected seed", opts.RandomSeed)
	}
	opts.PoissonSampler()
	if !sampled {
		t.Error("PoissonSampler was replaced, want the injected sampler kept")
	}
	if lim := opts.LimiterFactory(100); lim.Limit() != rate.Inf {
		t.Error("LimiterFactory was replaced, want the injected factory kept")
	}
}

func TestDefaultLimiterFactory(t *testing.T) {
	opts := Options{}
	opts.normalize()

	if lim := opts.LimiterFactory(0); lim.Limit() != rate.Inf {
		t.Errorf("Limit(0) = %v, want Inf for an uncapped run", lim.Limit())
	}

	lim := opts.LimiterFactory(25)
	if lim.Limit() != rate.Limit(25) {
		t.Errorf("Limit(25) = %v, want 25 req/s", lim.Limit())
	}
	if lim.Burst() != 25 {
		t.Errorf("Burst(25) = %d, want burst sized to the rate", lim.Burst())
	}
}
