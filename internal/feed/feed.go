// Package feed hands out one data record per invocation according to a
// configured selection strategy. A Feed wraps exactly one record set and
// is called concurrently from every worker on the hot path, so strategy
// state is limited to an atomic cursor, a lock-free assignment map and
// the runtime's sharded random source.
package feed

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/feedshot/feedshot/internal/datasource"
)

// Strategy selects which record a GetNext call returns.
type Strategy string

const (
	// StrategyRandom returns a uniformly random record on every call.
	StrategyRandom Strategy = "random"

	// StrategyCircular returns records in load order, wrapping after the
	// last. Concurrent calls collectively advance the cursor by exactly
	// one step each.
	StrategyCircular Strategy = "circular"

	// StrategyConstant pins each worker to one record for its lifetime,
	// assigned as worker index modulo set size.
	StrategyConstant Strategy = "constant"
)

// ParseStrategy maps a configuration string onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyRandom:
		return StrategyRandom, nil
	case StrategyCircular:
		return StrategyCircular, nil
	case StrategyConstant:
		return StrategyConstant, nil
	default:
		return "", fmt.Errorf("unknown feed strategy %q (supported: random, circular, constant)", s)
	}
}

// Invocation identifies one call into the engine: which worker is asking
// and which of its iterations this is. Only the constant strategy reads
// the worker identity.
type Invocation struct {
	Worker    int
	Iteration uint64
}

// Feed owns a non-empty record set plus the strategy state mutated on
// every invocation. One Feed per scenario; safe for concurrent use.
type Feed struct {
	set      *datasource.RecordSet
	strategy Strategy

	cursor      atomic.Uint64 // circular
	assignments sync.Map      // constant: worker -> record index
}

// New builds a Feed over the given record set. An empty set is a
// configuration error surfaced before any traffic starts.
func New(set *datasource.RecordSet, strategy Strategy) (*Feed, error) {
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: cannot build a %s feed over an empty record set",
			datasource.ErrEmpty, strategy)
	}
	switch strategy {
	case StrategyRandom, StrategyCircular, StrategyConstant:
	default:
		return nil, fmt.Errorf("unknown feed strategy %q", strategy)
	}
	return &Feed{set: set, strategy: strategy}, nil
}

// GetNext returns the record for this invocation. It never fails once the
// feed is constructed.
func (f *Feed) GetNext(inv Invocation) datasource.Record {
	switch f.strategy {
	case StrategyCircular:
		step := f.cursor.Add(1) - 1
		return f.set.At(int(step % uint64(f.set.Len())))
	case StrategyConstant:
		if idx, ok := f.assignments.Load(inv.Worker); ok {
			return f.set.At(idx.(int))
		}
		assigned := inv.Worker % f.set.Len()
		if assigned < 0 {
			assigned += f.set.Len()
		}
		// LoadOrStore makes the first claim win; concurrent first calls
		// for the same worker observe a single assignment.
		idx, _ := f.assignments.LoadOrStore(inv.Worker, assigned)
		return f.set.At(idx.(int))
	default:
		return f.set.At(rand.IntN(f.set.Len()))
	}
}

// Len returns the size of the underlying record set.
func (f *Feed) Len() int {
	return f.set.Len()
}

// Strategy returns the configured selection strategy.
func (f *Feed) Strategy() Strategy {
	return f.strategy
}
