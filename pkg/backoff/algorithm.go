// Package backoff provides delay-growth algorithm implementations
package backoff

import (
	"math"
	"time"
)

// Algorithm computes the base delay before a given retry. Implementations must
// be referentially stateless: given the same (retryNumber, prev) pair they must
// describe the same delay distribution. Feedback algorithms read the previous
// base delay from prev; stateless ones ignore it.
type Algorithm interface {
	// Calculate returns the base delay before retry retryNumber (1-based).
	// A true stop flag ends the retry sequence; the delay is then ignored.
	Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool)

	// JitterApplicable reports whether jitter may be layered on top of this
	// algorithm's output. Algorithms that already randomize return false.
	JitterApplicable() bool
}

// Fixed repeats the same delay for every retry
type Fixed struct {
	delay time.Duration
}

// NewFixed creates a fixed delay algorithm
func NewFixed(delay time.Duration) *Fixed {
	return &Fixed{delay: delay}
}

// Calculate returns the base delay for the given retry
func (a *Fixed) Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool) {
	return a.delay, false
}

// JitterApplicable reports whether jitter may be applied
func (a *Fixed) JitterApplicable() bool { return true }

// Linear grows the delay by a fixed increment each retry
type Linear struct {
	initialDelay time.Duration
	increment    time.Duration
}

// NewLinear creates a linear growth algorithm
func NewLinear(initialDelay, increment time.Duration) *Linear {
	return &Linear{initialDelay: initialDelay, increment: increment}
}

// Calculate returns the base delay for the given retry
func (a *Linear) Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool) {
	if retryNumber <= 0 {
		retryNumber = 1
	}
	return a.initialDelay + time.Duration(retryNumber-1)*a.increment, false
}

// JitterApplicable reports whether jitter may be applied
func (a *Linear) JitterApplicable() bool { return true }

// Exponential multiplies the delay by a constant factor each retry
type Exponential struct {
	initialDelay time.Duration
	multiplier   float64
}

// NewExponential creates an exponential growth algorithm with a default
// multiplier of 2.0
func NewExponential(initialDelay time.Duration, opts ...Option) *Exponential {
	a := &Exponential{
		initialDelay: initialDelay,
		multiplier:   2.0,
	}

	for _, opt := range opts {
		opt.apply(a)
	}

	return a
}

// Calculate returns the base delay for the given retry
func (a *Exponential) Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool) {
	if retryNumber <= 0 {
		retryNumber = 1
	}
	return scale(float64(a.initialDelay) * math.Pow(a.multiplier, float64(retryNumber-1))), false
}

// JitterApplicable reports whether jitter may be applied
func (a *Exponential) JitterApplicable() bool { return true }

// Polynomial grows the delay as initialDelay * retryNumber^exponent
type Polynomial struct {
	initialDelay time.Duration
	exponent     float64
}

// NewPolynomial creates a polynomial growth algorithm with a default
// exponent of 2.0
func NewPolynomial(initialDelay time.Duration, opts ...Option) *Polynomial {
	a := &Polynomial{
		initialDelay: initialDelay,
		exponent:     2.0,
	}

	for _, opt := range opts {
		opt.apply(a)
	}

	return a
}

// Calculate returns the base delay for the given retry
func (a *Polynomial) Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool) {
	if retryNumber <= 0 {
		retryNumber = 1
	}
	return scale(float64(a.initialDelay) * math.Pow(float64(retryNumber), a.exponent)), false
}

// JitterApplicable reports whether jitter may be applied
func (a *Polynomial) JitterApplicable() bool { return true }

// Fibonacci scales the base delay by the Fibonacci sequence
type Fibonacci struct {
	baseDelay time.Duration
	fibCache  []int64 // cached Fibonacci sequence
}

// NewFibonacci creates a fibonacci growth algorithm
func NewFibonacci(baseDelay time.Duration) *Fibonacci {
	return &Fibonacci{
		baseDelay: baseDelay,
		fibCache:  []int64{1, 1},
	}
}

// Calculate returns the base delay for the given retry
func (a *Fibonacci) Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool) {
	if retryNumber <= 0 {
		retryNumber = 1
	}
	return time.Duration(a.fibonacci(retryNumber-1)) * a.baseDelay, false
}

// fibonacci returns the nth Fibonacci number, extending the cache as needed
func (a *Fibonacci) fibonacci(n int) int64 {
	if n < len(a.fibCache) {
		return a.fibCache[n]
	}

	for i := len(a.fibCache); i <= n; i++ {
		next := a.fibCache[i-1] + a.fibCache[i-2]
		// prevent overflow
		if next < a.fibCache[i-1] {
			next = math.MaxInt32
		}
		a.fibCache = append(a.fibCache, next)
	}

	return a.fibCache[n]
}

// JitterApplicable reports whether jitter may be applied
func (a *Fibonacci) JitterApplicable() bool { return true }

// Sequence replays an explicit list of delays. Once the list is exhausted it
// either repeats the last delay (WithRepeatLast) or stops the retry sequence.
type Sequence struct {
	delays     []time.Duration
	repeatLast bool
}

// NewSequence creates a sequence algorithm from an explicit delay list
func NewSequence(delays []time.Duration, opts ...Option) *Sequence {
	a := &Sequence{
		delays: append([]time.Duration(nil), delays...),
	}

	for _, opt := range opts {
		opt.apply(a)
	}

	return a
}

// Calculate returns the base delay for the given retry
func (a *Sequence) Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool) {
	if retryNumber <= 0 {
		retryNumber = 1
	}
	if retryNumber <= len(a.delays) {
		return a.delays[retryNumber-1], false
	}
	if a.repeatLast && len(a.delays) > 0 {
		return a.delays[len(a.delays)-1], false
	}
	return 0, true
}

// JitterApplicable reports whether jitter may be applied
func (a *Sequence) JitterApplicable() bool { return true }

// CalculateFunc is a custom delay calculation function
type CalculateFunc func(retryNumber int, prev *time.Duration) (time.Duration, bool)

// Func adapts a custom function into an Algorithm
type Func struct {
	fn         CalculateFunc
	jitterable bool
}

// NewFunc creates an algorithm from a custom function. The function is treated
// as jitter-applicable; use NewRandomizedFunc for functions that already
// incorporate randomness.
func NewFunc(fn CalculateFunc) *Func {
	return &Func{fn: fn, jitterable: true}
}

// NewRandomizedFunc creates an algorithm from a custom function whose output
// must not be jittered again
func NewRandomizedFunc(fn CalculateFunc) *Func {
	return &Func{fn: fn}
}

// Calculate returns the base delay for the given retry
func (a *Func) Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool) {
	return a.fn(retryNumber, prev)
}

// JitterApplicable reports whether jitter may be applied
func (a *Func) JitterApplicable() bool { return a.jitterable }

// NoDelay retries immediately with no wait between attempts
type NoDelay struct{}

// NewNoDelay creates a zero-delay algorithm
func NewNoDelay() *NoDelay { return &NoDelay{} }

// Calculate returns the base delay for the given retry
func (a *NoDelay) Calculate(retryNumber int, prev *time.Duration) (time.Duration, bool) {
	return 0, false
}

// JitterApplicable reports whether jitter may be applied
func (a *NoDelay) JitterApplicable() bool { return false }

// scale converts a float delay to a Duration, saturating instead of
// overflowing for very large values
func scale(v float64) time.Duration {
	if v >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	if v <= 0 {
		return 0
	}
	return time.Duration(v)
}

// ensure the compile-time contract holds for every built-in algorithm
var (
	_ Algorithm = (*Fixed)(nil)
	_ Algorithm = (*Linear)(nil)
	_ Algorithm = (*Exponential)(nil)
	_ Algorithm = (*Polynomial)(nil)
	_ Algorithm = (*Fibonacci)(nil)
	_ Algorithm = (*Sequence)(nil)
	_ Algorithm = (*Func)(nil)
	_ Algorithm = (*NoDelay)(nil)
	_ Algorithm = (*Random)(nil)
	_ Algorithm = (*Decorrelated)(nil)
)
