// Package retry provides the attempt state machine
package retry

import (
	"context"
	"time"

	"github.com/jzx17/goretry/pkg/types"
)

// StateMachine tracks attempt progression for one retry run: how many attempts
// have happened, whether the run has stopped, the timing of each attempt, and
// the actual wait between attempts. It is not safe for concurrent use; each
// run owns its machine exclusively.
//
// Lifecycle: NotStarted -> Running -> Stopped. Stopped is terminal; only Reset
// leaves it.
type StateMachine struct {
	calc  *DelayCalculator
	clock types.Clock

	// stepAtStart selects whether the caller checks the continuation
	// condition at the start of a loop iteration (for-style) or at the end
	// (do-while-style). In the latter mode a never-advanced machine already
	// reports attempt 1.
	stepAtStart bool

	started bool
	stopped bool
	attempt int // 0 = none yet

	advanceAt    time.Time
	hasAdvanceAt bool

	firstAttemptAt time.Time
	overallDelay   time.Duration
	overallWorking time.Duration

	current *AttemptLog
	logs    []*AttemptLog
}

// MachineOption is a configuration option for the state machine
type MachineOption func(*StateMachine)

// WithMachineClock sets the clock used for timing and waits
func WithMachineClock(clock types.Clock) MachineOption {
	return func(m *StateMachine) {
		m.clock = clock
	}
}

// WithStepAtLoopStart makes the machine expect Advance at the start of each
// loop iteration rather than the end
func WithStepAtLoopStart() MachineOption {
	return func(m *StateMachine) {
		m.stepAtStart = true
	}
}

// NewStateMachine creates a state machine driving the given delay calculator
func NewStateMachine(calc *DelayCalculator, opts ...MachineOption) *StateMachine {
	m := &StateMachine{
		calc:  calc,
		clock: types.NewRealClock(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if !m.stepAtStart {
		m.attempt = 1
	}

	return m
}

// Advance steps the machine to the next attempt. It returns false when the
// retry sequence has terminated; the machine is then Stopped and the attempt
// count does not include the attempt that never ran.
func (m *StateMachine) Advance() bool {
	if m.stopped {
		return false
	}

	if !m.started {
		m.started = true
		if m.stepAtStart {
			// the first attempt has no preceding delay and never
			// consults the calculator
			m.attempt = 1
			m.markAdvance()
			return true
		}
	}

	next := m.attempt + 1
	if m.calc.ShouldStop(next - 1) {
		m.stopped = true
		return false
	}

	m.attempt = next
	if d := m.calc.JitteredDelay(next - 1); d != nil {
		m.overallDelay += *d
	}
	m.markAdvance()
	return true
}

func (m *StateMachine) markAdvance() {
	m.advanceAt = m.clock.Now()
	m.hasAdvanceAt = true
}

// Wait blocks for the delay preceding the current attempt. Time already spent
// since Advance counts toward the delay, so the total inter-attempt spacing
// matches the computed delay regardless of work done in between. A nil delay
// returns immediately.
func (m *StateMachine) Wait(ctx context.Context) error {
	d := m.Delay()
	if d == nil {
		return nil
	}

	// re-derive the remaining time each pass to avoid cumulative drift
	for {
		remaining := *d
		if m.hasAdvanceAt {
			remaining -= m.clock.Since(m.advanceAt)
		}
		if remaining <= 0 {
			return nil
		}

		timer := m.clock.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C():
		}
	}
}

// StartOfAttempt opens the attempt log for the current attempt. It fails if
// the machine is stopped, has not been advanced, or the previous attempt is
// still open.
func (m *StateMachine) StartOfAttempt() error {
	if m.stopped {
		return types.ErrMachineStopped
	}
	if m.attempt <= 0 {
		return types.ErrMachineNotAdvanced
	}
	if m.current != nil && !m.current.finalized && m.current.attemptNumber == m.attempt {
		return types.ErrAttemptInProgress
	}

	now := m.clock.Now()
	if m.firstAttemptAt.IsZero() {
		m.firstAttemptAt = now
	}

	var prev *time.Duration
	if m.attempt > 1 {
		prev = m.calc.JitteredDelay(m.attempt - 1)
	}

	maxAttempts := 0
	if mr := m.calc.MaxRetries(); mr >= 0 {
		maxAttempts = mr + 1
	}

	m.started = true
	m.current = &AttemptLog{
		attemptNumber:  m.attempt,
		maxAttempts:    maxAttempts,
		unit:           m.calc.Unit(),
		firstAttemptAt: m.firstAttemptAt,
		thisAttemptAt:  now,
		prevDelay:      prev,
		overallDelay:   m.overallDelay,
	}
	m.logs = append(m.logs, m.current)

	return nil
}

// EndOfAttempt finalizes the current attempt's log, capturing its working
// time. Ending the same attempt twice is a safe no-op; ending an attempt that
// was never started is an error.
func (m *StateMachine) EndOfAttempt() error {
	if m.current == nil || m.current.attemptNumber != m.attempt {
		return types.ErrAttemptNotStarted
	}
	if m.current.finalized {
		return nil
	}

	working := m.clock.Since(m.current.thisAttemptAt)
	m.overallWorking += working
	m.current.finalize(working, m.overallWorking, m.calc.JitteredDelay(m.attempt))

	return nil
}

// IsLastAttempt reports whether no further attempt can follow the current one
func (m *StateMachine) IsLastAttempt() bool {
	if m.stopped {
		return true
	}
	return m.calc.ShouldStop(m.attempt)
}

// CurrentAttemptNumber returns the current attempt number, or 0 when the
// machine expects Advance at loop start and has not been advanced yet
func (m *StateMachine) CurrentAttemptNumber() int {
	return m.attempt
}

// Delay returns the jittered delay preceding the current attempt, or nil when
// there is none
func (m *StateMachine) Delay() *time.Duration {
	if m.attempt <= 1 {
		return nil
	}
	return m.calc.JitteredDelay(m.attempt - 1)
}

// Unit returns the unit of measure delays are reported in
func (m *StateMachine) Unit() types.Unit {
	return m.calc.Unit()
}

// Started reports whether the machine has left NotStarted
func (m *StateMachine) Started() bool {
	return m.started
}

// Stopped reports whether the machine has reached its terminal state
func (m *StateMachine) Stopped() bool {
	return m.stopped
}

// Logs returns the ordered attempt history
func (m *StateMachine) Logs() []*AttemptLog {
	out := make([]*AttemptLog, len(m.logs))
	copy(out, m.logs)
	return out
}

// CurrentLog returns the log for the current attempt, or nil if none was
// started
func (m *StateMachine) CurrentLog() *AttemptLog {
	return m.current
}

// Reset returns the machine to NotStarted and starts a fresh delay sequence
func (m *StateMachine) Reset() {
	m.calc.Reset()
	m.started = false
	m.stopped = false
	m.attempt = 0
	if !m.stepAtStart {
		m.attempt = 1
	}
	m.hasAdvanceAt = false
	m.advanceAt = time.Time{}
	m.firstAttemptAt = time.Time{}
	m.overallDelay = 0
	m.overallWorking = 0
	m.current = nil
	m.logs = nil
}
