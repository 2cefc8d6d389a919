// Package retry provides the retry orchestrator
package retry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jzx17/goretry/pkg/backoff"
	"github.com/jzx17/goretry/pkg/types"
)

// DefaultMaxAttempts is the attempt ceiling applied when no explicit ceiling
// is configured
const DefaultMaxAttempts = 5

// Action is the unit of work to retry
type Action func(ctx context.Context) (any, error)

// Executor runs an action under a retry policy: it drives the attempt state
// machine, matches failures against the configured policies, dispatches
// lifecycle callbacks, and resolves the final result or error. A single
// executor can be reused for repeated independent runs; concurrent use of one
// instance must be externally serialized.
type Executor struct {
	algo           backoff.Algorithm
	jitter         backoff.Jitter
	maxRetries     int
	maxDelay       *time.Duration
	unit           types.Unit
	immediateFirst bool
	disableDelays  bool
	clock          types.Clock

	errorPolicies   []ErrorMatch
	resultPolicies  []ResultMatch
	resultUntil     bool
	hasResultPolicy bool

	onSuccess       []func(result any, log *AttemptLog)
	onError         []func(err error, log *AttemptLog, willRetry bool)
	onInvalidResult []func(result any, willRetry bool, log *AttemptLog)
	onFailure       []func(logs []*AttemptLog)
	onFinally       []func(logs []*AttemptLog)

	events EventHandler

	calc    *DelayCalculator
	machine *StateMachine
}

// New creates an executor for the given backoff algorithm. By default it
// allows DefaultMaxAttempts attempts, retries every error, applies no jitter,
// and reports delays in seconds. Configuration errors surface here, never
// later.
func New(algo backoff.Algorithm, opts ...Option) (*Executor, error) {
	e := &Executor{
		algo:          algo,
		maxRetries:    DefaultMaxAttempts - 1,
		unit:          types.Seconds,
		clock:         types.NewRealClock(),
		errorPolicies: []ErrorMatch{MatchAnyError()},
	}

	for _, opt := range opts {
		opt(e)
	}

	calc, err := NewDelayCalculator(algo, CalculatorConfig{
		Jitter:              e.jitter,
		MaxRetries:          e.maxRetries,
		MaxDelay:            e.maxDelay,
		ImmediateFirstRetry: e.immediateFirst,
		DisableDelays:       e.disableDelays,
		Unit:                e.unit,
	})
	if err != nil {
		return nil, err
	}

	e.calc = calc
	e.machine = NewStateMachine(calc, WithMachineClock(e.clock))
	return e, nil
}

// Do runs the action until it succeeds, the retry sequence terminates, or a
// failure matches no policy. When retries exhaust, the outcome resolves in
// order of precedence: the matched policy's default, then the last error
// re-raised unchanged, then the last result as-is.
func (e *Executor) Do(ctx context.Context, action Action) (any, error) {
	return e.run(ctx, action, false, nil)
}

// DoWithDefault is Do with a caller-supplied fallback returned when retries
// exhaust and no matched policy carries its own default. Pass a func() any to
// compute the fallback lazily.
func (e *Executor) DoWithDefault(ctx context.Context, action Action, def any) (any, error) {
	return e.run(ctx, action, true, def)
}

// Execute runs a typed action on the executor
func Execute[T any](e *Executor, ctx context.Context, action func(ctx context.Context) (T, error)) (T, error) {
	out, err := e.Do(ctx, func(ctx context.Context) (any, error) {
		return action(ctx)
	})
	return convert[T](out), err
}

// ExecuteWithDefault runs a typed action with a typed fallback
func ExecuteWithDefault[T any](e *Executor, ctx context.Context, action func(ctx context.Context) (T, error), def T) (T, error) {
	out, err := e.DoWithDefault(ctx, func(ctx context.Context) (any, error) {
		return action(ctx)
	}, def)
	return convert[T](out), err
}

func convert[T any](v any) T {
	if t, ok := v.(T); ok {
		return t
	}
	var zero T
	return zero
}

// Logs returns the attempt history of the most recent completed run. It is
// empty between runs because each run resets the machine; callers wanting the
// history observe it through the failure and finally callbacks.
func (e *Executor) Logs() []*AttemptLog {
	return e.machine.Logs()
}

func (e *Executor) run(ctx context.Context, action Action, hasDefault bool, def any) (any, error) {
	m := e.machine
	prevStep := m.stepAtStart

	// the run loop checks its continuation condition up front, so the
	// machine temporarily steps at loop start regardless of how it was
	// configured; both the flag and the machine state are restored on every
	// exit path
	m.stepAtStart = true
	m.Reset()
	defer func() {
		m.stepAtStart = prevStep
		m.Reset()
	}()

	runID := uuid.NewString()

	var lastResult any
	var lastErr error
	var override any
	var hasOverride bool

	for m.Advance() {
		if err := m.Wait(ctx); err != nil {
			return nil, err
		}

		override = nil
		hasOverride = false

		if err := m.StartOfAttempt(); err != nil {
			return nil, err
		}
		e.emitStart(runID, m.CurrentAttemptNumber())

		result, actionErr := action(ctx)

		if err := m.EndOfAttempt(); err != nil {
			return nil, err
		}
		log := m.CurrentLog()

		if actionErr == nil {
			lastErr = nil
			lastResult = result

			if !e.hasResultPolicy {
				return e.succeed(runID, result, log)
			}

			match, ok := matchResultPolicy(e.resultPolicies, result)
			if e.resultUntil {
				// retry-until: success is exactly "result matches"
				if ok {
					return e.succeed(runID, result, log)
				}
			} else {
				// retry-when: a match means the result is invalid
				if !ok {
					return e.succeed(runID, result, log)
				}
				if match.hasDefault {
					override = match.def
					hasOverride = true
				}
			}

			willRetry := !m.IsLastAttempt()
			e.emitFailure(runID, log.AttemptNumber(), nil, willRetry)
			for _, cb := range e.onInvalidResult {
				cb(result, willRetry, log)
			}
			continue
		}

		lastErr = actionErr
		lastResult = nil

		match, ok := matchErrorPolicy(e.errorPolicies, actionErr)
		stop := !ok || m.IsLastAttempt()
		if ok && match.hasDefault {
			override = match.def
			hasOverride = true
		}

		willRetry := !stop
		e.emitFailure(runID, log.AttemptNumber(), actionErr, willRetry)
		for _, cb := range e.onError {
			cb(actionErr, log, willRetry)
		}

		if stop {
			break
		}
	}

	// retries exhausted; report before resolving the outcome
	allLogs := m.Logs()
	e.emitGiveUp(runID, len(allLogs), lastErr)
	for _, cb := range e.onFailure {
		cb(allLogs)
	}
	for _, cb := range e.onFinally {
		cb(allLogs)
	}

	switch {
	case hasOverride:
		return resolveDefault(override), nil
	case hasDefault:
		return resolveDefault(def), nil
	case lastErr != nil:
		return nil, lastErr
	default:
		return lastResult, nil
	}
}

func (e *Executor) succeed(runID string, result any, log *AttemptLog) (any, error) {
	e.emitSuccess(runID, log)
	for _, cb := range e.onSuccess {
		cb(result, log)
	}
	for _, cb := range e.onFinally {
		cb(e.machine.Logs())
	}
	return result, nil
}

func (e *Executor) emitStart(runID string, attempt int) {
	if e.events != nil {
		e.events.OnAttemptStart(runID, attempt)
	}
}

func (e *Executor) emitSuccess(runID string, log *AttemptLog) {
	if e.events != nil {
		var working time.Duration
		if w := log.WorkingTime(); w != nil {
			working = *w
		}
		e.events.OnAttemptSuccess(runID, log.AttemptNumber(), working)
	}
}

func (e *Executor) emitFailure(runID string, attempt int, err error, willRetry bool) {
	if e.events != nil {
		e.events.OnAttemptFailure(runID, attempt, err, willRetry)
	}
}

func (e *Executor) emitGiveUp(runID string, attempts int, err error) {
	if e.events != nil {
		e.events.OnGiveUp(runID, attempts, err)
	}
}
