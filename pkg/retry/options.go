package retry

import (
	"time"

	"github.com/jzx17/goretry/pkg/backoff"
	"github.com/jzx17/goretry/pkg/types"
)

// Option is a configuration option for the executor
type Option func(*Executor)

// WithJitter sets the jitter strategy applied to base delays. It is ignored
// for algorithms that already randomize their own output.
func WithJitter(jitter backoff.Jitter) Option {
	return func(e *Executor) {
		e.jitter = jitter
	}
}

// WithMaxAttempts caps the number of attempts, the initial try included.
// Values below one remove the ceiling.
func WithMaxAttempts(n int) Option {
	return func(e *Executor) {
		if n < 1 {
			e.maxRetries = -1
			return
		}
		e.maxRetries = n - 1
	}
}

// WithUnlimitedAttempts removes the attempt ceiling; the algorithm's own stop
// signal becomes the only terminator
func WithUnlimitedAttempts() Option {
	return func(e *Executor) {
		e.maxRetries = -1
	}
}

// WithMaxDelay caps every computed delay
func WithMaxDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.maxDelay = &d
	}
}

// WithUnit sets the unit of measure delays are reported in
func WithUnit(u types.Unit) Option {
	return func(e *Executor) {
		e.unit = u
	}
}

// WithImmediateFirstRetry forces the first retry to happen with no delay,
// shifting the algorithm's own sequence right by one slot
func WithImmediateFirstRetry() Option {
	return func(e *Executor) {
		e.immediateFirst = true
	}
}

// WithoutDelays forces every delay to zero while leaving the retry decisions
// intact. Intended for tests.
func WithoutDelays() Option {
	return func(e *Executor) {
		e.disableDelays = true
	}
}

// WithoutRetries allows only the initial attempt. Intended for tests.
func WithoutRetries() Option {
	return func(e *Executor) {
		e.maxRetries = 0
	}
}

// WithClock sets the clock used for timing and waits
func WithClock(clock types.Clock) Option {
	return func(e *Executor) {
		e.clock = clock
	}
}

// WithEventHandler sets the handler notified of attempt lifecycle events
func WithEventHandler(handler EventHandler) Option {
	return func(e *Executor) {
		e.events = handler
	}
}

// RetryOnErrors replaces the error-retry policy. The default policy retries
// every error; an empty policy retries none.
func RetryOnErrors(matches ...ErrorMatch) Option {
	return func(e *Executor) {
		e.errorPolicies = matches
	}
}

// RetryWhen retries while the action's result matches one of the given
// entries: a match means the result is invalid. Configuring it clears any
// retry-until policy.
func RetryWhen(matches ...ResultMatch) Option {
	return func(e *Executor) {
		e.resultPolicies = matches
		e.resultUntil = false
		e.hasResultPolicy = true
	}
}

// RetryUntil retries until the action's result matches one of the given
// entries: success is exactly "result matches". Configuring it clears any
// retry-when policy.
func RetryUntil(matches ...ResultMatch) Option {
	return func(e *Executor) {
		e.resultPolicies = matches
		e.resultUntil = true
		e.hasResultPolicy = true
	}
}

// OnSuccess registers a callback invoked once when a run succeeds. Callback
// panics propagate; callbacks are trusted, non-retryable code.
func OnSuccess(fn func(result any, log *AttemptLog)) Option {
	return func(e *Executor) {
		e.onSuccess = append(e.onSuccess, fn)
	}
}

// OnError registers a callback invoked after each failed attempt, with
// willRetry reporting whether another attempt follows
func OnError(fn func(err error, log *AttemptLog, willRetry bool)) Option {
	return func(e *Executor) {
		e.onError = append(e.onError, fn)
	}
}

// OnInvalidResult registers a callback invoked after each attempt whose
// result the configured policy rejects
func OnInvalidResult(fn func(result any, willRetry bool, log *AttemptLog)) Option {
	return func(e *Executor) {
		e.onInvalidResult = append(e.onInvalidResult, fn)
	}
}

// OnFailure registers a callback invoked once when a run exhausts its
// attempts, before the final outcome resolves
func OnFailure(fn func(logs []*AttemptLog)) Option {
	return func(e *Executor) {
		e.onFailure = append(e.onFailure, fn)
	}
}

// OnFinally registers a callback invoked once per run, after success or
// failure callbacks
func OnFinally(fn func(logs []*AttemptLog)) Option {
	return func(e *Executor) {
		e.onFinally = append(e.onFinally, fn)
	}
}
