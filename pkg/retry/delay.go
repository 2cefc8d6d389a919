// Package retry provides the delay calculation engine
package retry

import (
	"time"

	"github.com/erni27/imcache"

	"github.com/jzx17/goretry/pkg/backoff"
	"github.com/jzx17/goretry/pkg/types"
)

// CalculatorConfig configures a DelayCalculator. Note the MaxRetries zero
// value means no retries; pass a negative ceiling for an unlimited sequence.
type CalculatorConfig struct {
	// Jitter randomizes base delays. Nil disables jitter. Ignored when the
	// algorithm declares jitter inapplicable to its own output.
	Jitter backoff.Jitter

	// MaxRetries caps the number of retries. Negative means unlimited;
	// zero means no retries at all.
	MaxRetries int

	// MaxDelay caps every base delay. Nil means uncapped.
	MaxDelay *time.Duration

	// ImmediateFirstRetry forces the first retry's delay to zero and shifts
	// the algorithm's own sequence right by one slot.
	ImmediateFirstRetry bool

	// DisableDelays forces every computed delay to zero. The algorithm's
	// stop signal still propagates: it reflects the retry decision, not the
	// delay magnitude.
	DisableDelays bool

	// Unit tags delays for reporting
	Unit types.Unit
}

// DelayCalculator turns an algorithm's output into a bounded, optionally
// jittered, memoized delay sequence. Once a retry number's delay is computed
// it is never recomputed: feedback algorithms derive retry N's delay from
// retry N-1's, so repeated queries must not diverge. A nil delay is the stop
// signal, permanently recorded like any other value.
type DelayCalculator struct {
	algo backoff.Algorithm
	cfg  CalculatorConfig

	base     *imcache.Cache[int, *time.Duration]
	jittered *imcache.Cache[int, *time.Duration]
}

// NewDelayCalculator creates a delay calculator for the given algorithm
func NewDelayCalculator(algo backoff.Algorithm, cfg CalculatorConfig) (*DelayCalculator, error) {
	if algo == nil {
		return nil, types.NewConfigError("algorithm", types.ErrNoAlgorithm)
	}
	if err := cfg.Unit.Validate(); err != nil {
		return nil, types.NewConfigError("unit", err)
	}

	return &DelayCalculator{
		algo:     algo,
		cfg:      cfg,
		base:     imcache.New[int, *time.Duration](),
		jittered: imcache.New[int, *time.Duration](),
	}, nil
}

// BaseDelay returns the base (pre-jitter) delay before the given retry.
// Nil means the sequence has stopped at or before this retry number.
func (c *DelayCalculator) BaseDelay(retryNumber int) *time.Duration {
	if d, ok := c.base.Get(retryNumber); ok {
		return d
	}

	d := c.computeBase(retryNumber)
	c.base.Set(retryNumber, d, imcache.WithNoExpiration())
	return d
}

func (c *DelayCalculator) computeBase(retryNumber int) *time.Duration {
	// no delay precedes the first attempt
	if retryNumber <= 0 {
		return nil
	}
	if c.cfg.MaxRetries >= 0 && retryNumber > c.cfg.MaxRetries {
		return nil
	}

	// feedback algorithms need the previous delay; harmless for the rest
	prev := c.BaseDelay(retryNumber - 1)

	var delay time.Duration
	var stop bool
	switch {
	case c.cfg.ImmediateFirstRetry && retryNumber == 1:
		delay = 0
	case c.cfg.ImmediateFirstRetry:
		// slot 1 was consumed by the immediate retry, so the algorithm's
		// own sequence is shifted right by one
		delay, stop = c.algo.Calculate(retryNumber-1, prev)
	default:
		delay, stop = c.algo.Calculate(retryNumber, prev)
	}

	if stop {
		return nil
	}
	if c.cfg.DisableDelays {
		delay = 0
	}
	if c.cfg.MaxDelay != nil && delay > *c.cfg.MaxDelay {
		delay = *c.cfg.MaxDelay
	}
	if delay < 0 {
		delay = 0
	}

	return &delay
}

// JitteredDelay returns the jittered, clamped delay before the given retry.
// Nil means the sequence has stopped at or before this retry number.
func (c *DelayCalculator) JitteredDelay(retryNumber int) *time.Duration {
	if d, ok := c.jittered.Get(retryNumber); ok {
		return d
	}

	d := c.computeJittered(retryNumber)
	c.jittered.Set(retryNumber, d, imcache.WithNoExpiration())
	return d
}

func (c *DelayCalculator) computeJittered(retryNumber int) *time.Duration {
	base := c.BaseDelay(retryNumber)
	if base == nil {
		return nil
	}

	delay := *base
	if c.cfg.Jitter != nil && c.algo.JitterApplicable() && delay > 0 {
		delay = c.cfg.Jitter.Apply(delay, retryNumber)
		// a misbehaving custom strategy must not produce a negative delay
		if delay < 0 {
			delay = 0
		}
	}

	return &delay
}

// ShouldStop reports whether the retry sequence has terminated at the given
// retry number. This is the sole termination predicate the rest of the engine
// relies on.
func (c *DelayCalculator) ShouldStop(retryNumber int) bool {
	if retryNumber <= 0 {
		return false
	}
	return c.BaseDelay(retryNumber) == nil
}

// MaxRetries returns the configured retry ceiling; negative means unlimited
func (c *DelayCalculator) MaxRetries() int {
	return c.cfg.MaxRetries
}

// Unit returns the unit of measure delays are reported in
func (c *DelayCalculator) Unit() types.Unit {
	return c.cfg.Unit
}

// Reset clears both memoization caches, starting a fresh independent sequence
func (c *DelayCalculator) Reset() {
	c.base.RemoveAll()
	c.jittered.RemoveAll()
}
