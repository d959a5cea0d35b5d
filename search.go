package subcrack

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// How often, in iterations, a chain checks its context.
const ctxPollMask = 255

// Breaker recovers plaintext from substitution ciphertext with a
// Metropolis-Hastings walk over keys, scored by a trained Model. A Breaker
// holds no per-search state and may be used concurrently.
type Breaker struct {
	scorer   *Scorer
	log      *zap.Logger
	observer Observer
}

// NewBreaker returns ErrUntrained unless m came from Trainer.Compile or
// Model.UnmarshalBinary.
func NewBreaker(m *Model, opts ...BreakerOption) (*Breaker, error) {
	scorer, err := NewScorer(m)
	if err != nil {
		return nil, err
	}
	b := &Breaker{
		scorer: scorer,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// Score is a shortcut for the Breaker's Scorer.
func (b *Breaker) Score(c Cipher, ciphertext string) float64 {
	return b.scorer.Score(c, ciphertext)
}

type Result struct {
	Plaintext string

	// Key is the best key found, in the plaintext to ciphertext direction.
	Key Cipher

	Score      float64
	Chain      int
	Iterations int
	Accepted   int
}

// Decrypt canonicalizes ciphertext and searches for the key that makes it
// most plausible under the model. Invalid options are rejected before any
// work starts. If ctx is cancelled the search stops and ctx.Err() is
// returned without a result.
func (b *Breaker) Decrypt(ctx context.Context, ciphertext string, opts SearchOptions) (Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	ct := indices(Canonicalize(ciphertext), nil)

	var reportMu sync.Mutex
	report := opts.Reporter
	if report != nil && opts.Chains > 1 {
		inner := report
		report = func(p Progress) {
			reportMu.Lock()
			defer reportMu.Unlock()
			inner(p)
		}
	}

	results := make([]chainResult, opts.Chains)
	g, gctx := errgroup.WithContext(ctx)
	for k := range opts.Chains {
		ch := &chain{
			id:     k,
			scorer: b.scorer,
			rng:    NewRand(opts.Seed + uint64(k)),
			ct:     ct,
			opts:   opts,
			report: report,
			exp:    math.Exp,
		}
		if opts.FastExp {
			ch.exp = expFast
		}
		g.Go(func() error {
			b.log.Debug("chain started", zap.Int("chain", k), zap.Uint64("seed", opts.Seed+uint64(k)))
			r, err := ch.run(gctx)
			if err != nil {
				return err
			}
			results[k] = r
			b.log.Debug("chain finished",
				zap.Int("chain", k),
				zap.Float64("best_score", r.bestScore),
				zap.Int("accepted", r.accepted),
				zap.Duration("elapsed", r.elapsed))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	win := 0
	for k := range results {
		if results[k].bestScore > results[win].bestScore {
			win = k
		}
		if b.observer != nil {
			b.observer.ObserveChain(ChainStats{
				Chain:      k,
				Iterations: opts.Iterations,
				Accepted:   results[k].accepted,
				BestScore:  results[k].bestScore,
				Duration:   results[k].elapsed,
			})
		}
	}

	best := results[win]
	b.log.Info("decryption finished",
		zap.Int("symbols", len(ct)),
		zap.Int("chains", opts.Chains),
		zap.Int("iterations", opts.Iterations),
		zap.Int("winning_chain", win),
		zap.Float64("score", best.bestScore))

	return Result{
		Plaintext:  decode(&best.best, ct, -1),
		Key:        best.best,
		Score:      best.bestScore,
		Chain:      win,
		Iterations: opts.Iterations,
		Accepted:   best.accepted,
	}, nil
}

type chainResult struct {
	best      Cipher
	bestScore float64
	accepted  int
	elapsed   time.Duration
}

// chain owns one Markov chain: its current and best keys and its generator.
// Nothing in a chain is shared with any other.
type chain struct {
	id     int
	scorer *Scorer
	rng    *rand.Rand
	ct     []uint8
	opts   SearchOptions
	report Reporter
	exp    func(float64) float64
}

func (ch *chain) run(ctx context.Context) (chainResult, error) {
	start := time.Now()

	cur := RandomCipher(ch.rng)
	curScore := ch.scorer.score(&cur, ch.ct)
	best, bestScore := cur, curScore
	accepted := 0

	for i := 0; i < ch.opts.Iterations; i++ {
		if i&ctxPollMask == 0 {
			if err := ctx.Err(); err != nil {
				return chainResult{}, err
			}
		}

		a, b := ch.propose()
		cand := cur
		cand.swap(a, b)
		candScore := ch.scorer.score(&cand, ch.ct)

		// Metropolis: always move uphill, move downhill with probability
		// exp(delta). Equal scores, including a == b, always move.
		if candScore > curScore || ch.rng.Float64() < ch.exp(candScore-curScore) {
			cur, curScore = cand, candScore
			accepted++
		}

		if candScore > bestScore {
			best, bestScore = cand, candScore
		}

		if ch.report != nil && i%ch.opts.ReportEvery == 0 {
			ch.report(Progress{
				Chain:        ch.id,
				Iteration:    i,
				CurrentScore: curScore,
				BestScore:    bestScore,
				Accepted:     accepted,
				Sample:       decode(&best, ch.ct, sampleLen),
			})
		}
	}

	return chainResult{
		best:      best,
		bestScore: bestScore,
		accepted:  accepted,
		elapsed:   time.Since(start),
	}, nil
}

// propose draws the two plaintext indices whose images are swapped. By
// default they are drawn with replacement, so a proposal may be a no-op.
func (ch *chain) propose() (a, b int) {
	if !ch.opts.DistinctSwaps {
		return ch.rng.IntN(AlphabetSize), ch.rng.IntN(AlphabetSize)
	}
	a = ch.rng.IntN(AlphabetSize)
	b = ch.rng.IntN(AlphabetSize - 1)
	if b >= a {
		b++
	}
	return a, b
}
