package backoff

// Randomized backoff algorithms. Their output already incorporates randomness,
// so jitter is never layered on top (JitterApplicable is false).

import (
	"math/rand"
	"time"

	"github.com/jzx17/goretry/pkg/types"
)

// Random picks a uniform delay in [min, max] for every retry
type Random struct {
	min time.Duration
	max time.Duration
	rnd *rand.Rand
}

// NewRandom creates a uniform random delay algorithm. A minimum greater than
// the maximum is a configuration error.
func NewRandom(min, max time.Duration, opts ...Option) (*Random, error) {
	if min > max {
		return nil, types.NewConfigError("random delay range", types.ErrInvalidRange)
	}

	a := &Random{min: min, max: max}

	for _, opt := range opts {
		opt.apply(a)
	}

	return a, nil
}

// Calculate returns the base delay for the given retry
func (a *Random) Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool) {
	if a.max <= a.min {
		return a.min, false
	}
	return a.min + randDuration(a.rnd, a.max-a.min), false
}

// JitterApplicable reports whether jitter may be applied
func (a *Random) JitterApplicable() bool { return false }

// Decorrelated implements AWS-style decorrelated backoff: each delay is drawn
// from [base, prev*3], capped. It is a feedback algorithm; the previous base
// delay is fed back in through prev.
type Decorrelated struct {
	baseDelay time.Duration
	capDelay  time.Duration
	rnd       *rand.Rand
}

// NewDecorrelated creates a decorrelated backoff algorithm
func NewDecorrelated(baseDelay, capDelay time.Duration, opts ...Option) *Decorrelated {
	a := &Decorrelated{baseDelay: baseDelay, capDelay: capDelay}

	for _, opt := range opts {
		opt.apply(a)
	}

	return a
}

// Calculate returns the base delay for the given retry
func (a *Decorrelated) Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool) {
	last := a.baseDelay
	if prev != nil && *prev > 0 {
		last = *prev
	}

	upper := last * 3
	if upper > a.capDelay {
		upper = a.capDelay
	}
	if upper <= a.baseDelay {
		return a.baseDelay, false
	}

	return a.baseDelay + randDuration(a.rnd, upper-a.baseDelay), false
}

// JitterApplicable reports whether jitter may be applied
func (a *Decorrelated) JitterApplicable() bool { return false }

// randDuration draws a uniform duration in [0, n], using the injected source
// when one was configured
func randDuration(rnd *rand.Rand, n time.Duration) time.Duration {
	if n <= 0 {
		return 0
	}
	if rnd != nil {
		return time.Duration(rnd.Int63n(int64(n) + 1))
	}
	return time.Duration(rand.Int63n(int64(n) + 1))
}

// randFloat draws a uniform float in [0, 1)
func randFloat(rnd *rand.Rand) float64 {
	if rnd != nil {
		return rnd.Float64()
	}
	return rand.Float64()
}
