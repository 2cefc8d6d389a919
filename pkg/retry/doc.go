// Package retry provides managed retry-with-backoff execution: it decides
// whether and how long to wait between attempts, when to give up, and what to
// return when retries are exhausted.
//
// The engine has three layers:
//
// 1. DelayCalculator turns a backoff.Algorithm's output into a bounded,
// optionally jittered, memoized delay sequence. Memoization is load-bearing:
// feedback algorithms derive retry N's delay from retry N-1's, so re-querying
// a retry number must always return the identical value.
//
// 2. StateMachine tracks attempt progression (NotStarted -> Running ->
// Stopped), builds the per-attempt AttemptLog history, and performs the actual
// wait. Delays are indexed by retry number, not attempt number: attempt 1 is
// the initial try, not a retry.
//
// 3. Executor runs the caller's action, matches failures (errors and invalid
// results) against the configured policies, dispatches lifecycle callbacks in
// a fixed order, and resolves the final outcome.
//
// Basic usage:
//
//	exec, err := retry.New(backoff.NewExponential(100*time.Millisecond),
//		retry.WithMaxAttempts(3),
//		retry.WithJitter(backoff.NewFullJitter()))
//	if err != nil {
//		return err
//	}
//
//	result, err := retry.Execute(exec, ctx, func(ctx context.Context) (string, error) {
//		return fetchSomething(ctx)
//	})
//
// Error policies:
//
//	exec, err := retry.New(backoff.NewFixed(time.Second),
//		retry.RetryOnErrors(
//			retry.MatchError(ErrTemporary).WithDefault("fallback"),
//			retry.MatchErrorFunc(isTimeout),
//		))
//
// Policies are matched most-specific first: a narrowly-scoped default always
// beats a catch-all default, and any default beats a matcher with none,
// independent of registration order.
//
// Result policies retry on the value the action returns instead of an error:
//
//	// retry while the result is "pending"
//	retry.RetryWhen(retry.MatchResult("pending"))
//
//	// retry until the result is "ready"
//	retry.RetryUntil(retry.MatchResult("ready"))
//
// Outcome resolution when retries exhaust, in order of precedence: the matched
// policy's default, the caller's default (DoWithDefault / ExecuteWithDefault),
// the last error re-raised unchanged, the last result as-is. Defaults given as
// func() any are invoked lazily.
//
// Callback order: on success, success callbacks then finally callbacks; on
// exhaustion, failure callbacks then finally callbacks, before the outcome
// resolves. Callback panics propagate immediately and are never retried.
//
// The engine is single-threaded and blocking: Wait sleeps on the calling
// goroutine, the action runs inline, and cancellation is cooperative through
// the context passed to Do. Concurrent use of a single Executor or
// StateMachine must be externally serialized.
package retry
