package backoff

import (
	"math/rand"
	"time"

	"github.com/jzx17/goretry/pkg/types"
)

// Jitter randomizes a base delay to spread out synchronized retries. The
// result must be >= 0; callers clamp defensively regardless.
type Jitter interface {
	Apply(delay time.Duration, retryNumber int) time.Duration
}

// FullJitter draws the delay uniformly from [0, delay]
type FullJitter struct {
	rnd *rand.Rand
}

// NewFullJitter creates a full jitter strategy
func NewFullJitter(opts ...Option) *FullJitter {
	j := &FullJitter{}

	for _, opt := range opts {
		opt.apply(j)
	}

	return j
}

// Apply randomizes the delay
func (j *FullJitter) Apply(delay time.Duration, retryNumber int) time.Duration {
	if delay <= 0 {
		return 0
	}
	return randDuration(j.rnd, delay)
}

// EqualJitter keeps half the delay and randomizes the other half:
// delay/2 + uniform[0, delay/2]
type EqualJitter struct {
	rnd *rand.Rand
}

// NewEqualJitter creates an equal jitter strategy
func NewEqualJitter(opts ...Option) *EqualJitter {
	j := &EqualJitter{}

	for _, opt := range opts {
		opt.apply(j)
	}

	return j
}

// Apply randomizes the delay
func (j *EqualJitter) Apply(delay time.Duration, retryNumber int) time.Duration {
	if delay <= 0 {
		return 0
	}
	half := delay / 2
	return half + randDuration(j.rnd, half)
}

// RangeJitter scales the delay by a uniform factor in [minFactor, maxFactor].
// Factors above 1.0 allow jitter to exceed the base delay.
type RangeJitter struct {
	minFactor float64
	maxFactor float64
	rnd       *rand.Rand
}

// NewRangeJitter creates a range jitter strategy. A negative minimum or a
// minimum factor greater than the maximum is a configuration error.
func NewRangeJitter(minFactor, maxFactor float64, opts ...Option) (*RangeJitter, error) {
	if minFactor < 0 || minFactor > maxFactor {
		return nil, types.NewConfigError("jitter factor range", types.ErrInvalidRange)
	}

	j := &RangeJitter{minFactor: minFactor, maxFactor: maxFactor}

	for _, opt := range opts {
		opt.apply(j)
	}

	return j, nil
}

// Apply randomizes the delay
func (j *RangeJitter) Apply(delay time.Duration, retryNumber int) time.Duration {
	if delay <= 0 {
		return 0
	}
	factor := j.minFactor + randFloat(j.rnd)*(j.maxFactor-j.minFactor)
	return time.Duration(float64(delay) * factor)
}

// JitterFunc adapts a plain function into a Jitter
type JitterFunc func(delay time.Duration, retryNumber int) time.Duration

// Apply randomizes the delay
func (f JitterFunc) Apply(delay time.Duration, retryNumber int) time.Duration {
	return f(delay, retryNumber)
}

var (
	_ Jitter = (*FullJitter)(nil)
	_ Jitter = (*EqualJitter)(nil)
	_ Jitter = (*RangeJitter)(nil)
	_ Jitter = (JitterFunc)(nil)
)
