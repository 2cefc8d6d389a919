// Package backoff provides the pluggable delay-growth algorithms and jitter
// strategies consumed by the retry engine.
//
// Algorithms:
//   - Fixed: same delay every retry
//   - Linear: initialDelay + (n-1) * increment
//   - Exponential: initialDelay * multiplier^(n-1)
//   - Polynomial: initialDelay * n^exponent
//   - Fibonacci: fib(n) * baseDelay
//   - Sequence: explicit delay list, optionally repeating the last entry
//   - Random: uniform delay in [min, max]
//   - Decorrelated: AWS-style decorrelated backoff, fed by the previous delay
//   - Func: custom callback
//
// Jitter strategies:
//   - FullJitter: uniform in [0, delay]
//   - EqualJitter: delay/2 + uniform[0, delay/2]
//   - RangeJitter: delay scaled by a uniform factor in [min, max]
//   - JitterFunc: custom callback
//
// Algorithms whose output is already random (Random, Decorrelated) report
// JitterApplicable() == false and are never jittered again by the engine.
//
// An Algorithm sees the retry number (1-based; the initial attempt is not a
// retry) and the previous base delay. Returning stop == true ends the retry
// sequence; this is a retry decision, not a zero delay.
//
// Basic usage:
//
//	algo := backoff.NewExponential(100*time.Millisecond, backoff.WithMultiplier(1.5))
//	delay, stop := algo.Calculate(1, nil)
//
// Randomized algorithms and jitters accept a deterministic source for tests:
//
//	rnd := rand.New(rand.NewSource(1))
//	jitter := backoff.NewFullJitter(backoff.WithRand(rnd))
package backoff
