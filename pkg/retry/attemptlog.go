package retry

import (
	"time"

	"github.com/jzx17/goretry/pkg/types"
)

// AttemptLog records one attempt: its position in the run, its timing, and the
// delays surrounding it. The state machine creates it when the attempt begins
// and finalizes it exactly once when the attempt ends; after finalization it is
// never mutated.
type AttemptLog struct {
	attemptNumber int
	maxAttempts   int // 0 = unlimited
	unit          types.Unit

	firstAttemptAt time.Time
	thisAttemptAt  time.Time

	workingTime        *time.Duration
	overallWorkingTime time.Duration

	prevDelay    *time.Duration
	nextDelay    *time.Duration
	overallDelay time.Duration

	finalized bool
}

// finalize fills in the timing fields captured when the attempt ends. The
// earliest completion wins; later calls are no-ops.
func (l *AttemptLog) finalize(working time.Duration, overallWorking time.Duration, next *time.Duration) {
	if l.finalized {
		return
	}
	l.workingTime = &working
	l.overallWorkingTime = overallWorking
	l.nextDelay = next
	l.finalized = true
}

// AttemptNumber returns the 1-based attempt number
func (l *AttemptLog) AttemptNumber() int {
	return l.attemptNumber
}

// RetryNumber returns the retry number (attempt number - 1; the initial
// attempt is not a retry)
func (l *AttemptLog) RetryNumber() int {
	return l.attemptNumber - 1
}

// MaxAttempts returns the attempt ceiling, or 0 when unlimited
func (l *AttemptLog) MaxAttempts() int {
	return l.maxAttempts
}

// Unit returns the unit of measure delays are reported in
func (l *AttemptLog) Unit() types.Unit {
	return l.unit
}

// FirstAttemptAt returns when the first attempt of the run began
func (l *AttemptLog) FirstAttemptAt() time.Time {
	return l.firstAttemptAt
}

// ThisAttemptAt returns when this attempt began
func (l *AttemptLog) ThisAttemptAt() time.Time {
	return l.thisAttemptAt
}

// WorkingTime returns the wall-clock time spent in the action for this
// attempt, or nil if the attempt has not ended
func (l *AttemptLog) WorkingTime() *time.Duration {
	return l.workingTime
}

// OverallWorkingTime returns the cumulative working time across all attempts
// so far, including this one
func (l *AttemptLog) OverallWorkingTime() time.Duration {
	return l.overallWorkingTime
}

// PrevDelay returns the delay that preceded this attempt, or nil for the
// first attempt
func (l *AttemptLog) PrevDelay() *time.Duration {
	return l.prevDelay
}

// NextDelay returns the delay that will precede the next attempt, or nil when
// the sequence has stopped or the attempt has not ended
func (l *AttemptLog) NextDelay() *time.Duration {
	return l.nextDelay
}

// OverallDelay returns the cumulative delay spent before this attempt,
// excluding the next delay
func (l *AttemptLog) OverallDelay() time.Duration {
	return l.overallDelay
}

// WorkingTimeIn returns the working time as a scalar in the given unit, or 0
// if the attempt has not ended
func (l *AttemptLog) WorkingTimeIn(u types.Unit) float64 {
	if l.workingTime == nil {
		return 0
	}
	return u.Scalar(*l.workingTime)
}

// OverallWorkingTimeIn returns the cumulative working time as a scalar in the
// given unit
func (l *AttemptLog) OverallWorkingTimeIn(u types.Unit) float64 {
	return u.Scalar(l.overallWorkingTime)
}

// PrevDelayIn returns the preceding delay as a scalar in the given unit, or 0
// for the first attempt
func (l *AttemptLog) PrevDelayIn(u types.Unit) float64 {
	if l.prevDelay == nil {
		return 0
	}
	return u.Scalar(*l.prevDelay)
}

// NextDelayIn returns the next delay as a scalar in the given unit, or 0 when
// there is none
func (l *AttemptLog) NextDelayIn(u types.Unit) float64 {
	if l.nextDelay == nil {
		return 0
	}
	return u.Scalar(*l.nextDelay)
}

// OverallDelayIn returns the cumulative delay as a scalar in the given unit
func (l *AttemptLog) OverallDelayIn(u types.Unit) float64 {
	return u.Scalar(l.overallDelay)
}
