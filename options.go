package subcrack

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var ErrInvalidOptions = errors.New("subcrack: invalid search options")

const (
	DefaultIterations  = 5000
	DefaultReportEvery = 500

	// Length of Progress.Sample.
	sampleLen = 100
)

// Progress is a snapshot of one chain handed to a Reporter.
type Progress struct {
	Chain        int
	Iteration    int
	CurrentScore float64
	BestScore    float64
	Accepted     int

	// First symbols of the best decoding so far.
	Sample string
}

// Reporter observes search progress. It never influences the search: it is
// called after the iteration's state update and consumes no randomness.
// Calls are serialised even when several chains run.
type Reporter func(p Progress)

type SearchOptions struct {
	// Number of proposals per chain. Zero returns the decryption under the
	// initial random key.
	Iterations int

	// Reporter is called on iteration 0 and every ReportEvery iterations
	// after it. Reporting is disabled when Reporter is nil; when enabled
	// ReportEvery must be positive.
	Reporter    Reporter
	ReportEvery int

	// Seed for the first chain; chain k uses Seed+k.
	Seed uint64

	// Independent chains to run concurrently; the best result wins. Zero
	// means one.
	Chains int

	// DistinctSwaps draws the two swapped symbols without replacement, so no
	// proposal is a no-op. This changes the search trajectory for a given
	// seed.
	DistinctSwaps bool

	// FastExp uses an approximate exponential in the acceptance test.
	FastExp bool
}

func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Iterations:  DefaultIterations,
		ReportEvery: DefaultReportEvery,
		Chains:      1,
	}
}

func (o SearchOptions) normalize() (SearchOptions, error) {
	if o.Chains == 0 {
		o.Chains = 1
	}
	if o.Chains < 0 {
		return o, fmt.Errorf("%w: chains must be positive, found %d", ErrInvalidOptions, o.Chains)
	}
	if o.Iterations < 0 {
		return o, fmt.Errorf("%w: iterations must not be negative, found %d", ErrInvalidOptions, o.Iterations)
	}
	if o.Reporter != nil && o.ReportEvery <= 0 {
		return o, fmt.Errorf("%w: report interval must be positive when reporting is enabled, found %d", ErrInvalidOptions, o.ReportEvery)
	}
	return o, nil
}

// ChainStats summarises one finished chain for an Observer.
type ChainStats struct {
	Chain      int
	Iterations int
	Accepted   int
	BestScore  float64
	Duration   time.Duration
}

// Observer receives chain summaries after a Decrypt call completes, in chain
// order, from the calling goroutine.
type Observer interface {
	ObserveChain(s ChainStats)
}

type BreakerOption func(b *Breaker)

func WithLogger(log *zap.Logger) BreakerOption {
	return func(b *Breaker) {
		if log != nil {
			b.log = log
		}
	}
}

func WithObserver(o Observer) BreakerOption {
	return func(b *Breaker) {
		b.observer = o
	}
}
