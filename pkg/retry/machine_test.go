package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/goretry/internal/testutils"
	"github.com/jzx17/goretry/pkg/backoff"
	"github.com/jzx17/goretry/pkg/types"
)

func newMachine(t *testing.T, algo backoff.Algorithm, cfg CalculatorConfig, opts ...MachineOption) *StateMachine {
	t.Helper()
	calc, err := NewDelayCalculator(algo, cfg)
	require.NoError(t, err)
	return NewStateMachine(calc, opts...)
}

func TestStateMachine_InitialState(t *testing.T) {
	m := newMachine(t, backoff.NewFixed(time.Second), CalculatorConfig{MaxRetries: 2})

	assert.False(t, m.Started())
	assert.False(t, m.Stopped())
	// a never-advanced machine in step-at-end mode already reports attempt 1
	assert.Equal(t, 1, m.CurrentAttemptNumber())
	assert.Nil(t, m.Delay())
}

func TestStateMachine_InitialStateStepAtStart(t *testing.T) {
	m := newMachine(t, backoff.NewFixed(time.Second), CalculatorConfig{MaxRetries: 2},
		WithStepAtLoopStart())

	assert.Equal(t, 0, m.CurrentAttemptNumber())

	// the first advance sets attempt 1 without consulting the calculator
	assert.True(t, m.Advance())
	assert.Equal(t, 1, m.CurrentAttemptNumber())
	assert.True(t, m.Started())
}

func TestStateMachine_AdvanceProgression(t *testing.T) {
	m := newMachine(t, backoff.NewFixed(time.Second), CalculatorConfig{MaxRetries: 2},
		WithStepAtLoopStart(), WithMachineClock(testutils.NewAutoClock()))

	assert.True(t, m.Advance()) // attempt 1
	assert.True(t, m.Advance()) // attempt 2
	assert.True(t, m.Advance()) // attempt 3
	assert.Equal(t, 3, m.CurrentAttemptNumber())

	// the ceiling allows 2 retries; the increment to attempt 4 rolls back
	assert.False(t, m.Advance())
	assert.True(t, m.Stopped())
	assert.Equal(t, 3, m.CurrentAttemptNumber())

	// stopped is terminal
	assert.False(t, m.Advance())
}

func TestStateMachine_IsLastAttempt(t *testing.T) {
	m := newMachine(t, backoff.NewFixed(time.Second), CalculatorConfig{MaxRetries: 1},
		WithStepAtLoopStart(), WithMachineClock(testutils.NewAutoClock()))

	assert.True(t, m.Advance())
	assert.False(t, m.IsLastAttempt(), "a retry remains after attempt 1")

	assert.True(t, m.Advance())
	assert.True(t, m.IsLastAttempt(), "attempt 2 is the last with one retry allowed")
}

func TestStateMachine_WaitUsesComputedDelay(t *testing.T) {
	clock := testutils.NewAutoClock()
	m := newMachine(t, backoff.NewFixed(2*time.Second), CalculatorConfig{MaxRetries: 3},
		WithStepAtLoopStart(), WithMachineClock(clock))

	require.True(t, m.Advance())
	require.NoError(t, m.Wait(context.Background())) // no delay before attempt 1

	require.True(t, m.Advance())
	require.NoError(t, m.Wait(context.Background()))

	waits := clock.Waits()
	require.Len(t, waits, 1)
	assert.Equal(t, 2*time.Second, waits[0])
}

func TestStateMachine_WaitSubtractsElapsedWork(t *testing.T) {
	clock := testutils.NewAutoClock()
	m := newMachine(t, backoff.NewFixed(2*time.Second), CalculatorConfig{MaxRetries: 3},
		WithStepAtLoopStart(), WithMachineClock(clock))

	require.True(t, m.Advance())
	require.True(t, m.Advance())

	// time spent between Advance and Wait counts toward the delay
	clock.Advance(1500 * time.Millisecond)
	require.NoError(t, m.Wait(context.Background()))

	waits := clock.Waits()
	require.Len(t, waits, 1)
	assert.Equal(t, 500*time.Millisecond, waits[0])
}

func TestStateMachine_WaitSkipsFullyElapsedDelay(t *testing.T) {
	clock := testutils.NewAutoClock()
	m := newMachine(t, backoff.NewFixed(time.Second), CalculatorConfig{MaxRetries: 3},
		WithStepAtLoopStart(), WithMachineClock(clock))

	require.True(t, m.Advance())
	require.True(t, m.Advance())

	clock.Advance(5 * time.Second)
	require.NoError(t, m.Wait(context.Background()))
	assert.Empty(t, clock.Waits(), "no sleep when the delay has already elapsed")
}

func TestStateMachine_WaitCancelled(t *testing.T) {
	// the real clock would block for an hour; cancellation must win
	m := newMachine(t, backoff.NewFixed(time.Hour), CalculatorConfig{MaxRetries: 3},
		WithStepAtLoopStart())

	require.True(t, m.Advance())
	require.True(t, m.Advance())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Wait(ctx), context.Canceled)
}

func TestStateMachine_AttemptBracketing(t *testing.T) {
	clock := testutils.NewAutoClock()
	m := newMachine(t, backoff.NewFixed(time.Second), CalculatorConfig{MaxRetries: 2},
		WithStepAtLoopStart(), WithMachineClock(clock))

	require.True(t, m.Advance())
	require.NoError(t, m.StartOfAttempt())
	clock.Advance(100 * time.Millisecond)
	require.NoError(t, m.EndOfAttempt())

	logs := m.Logs()
	require.Len(t, logs, 1)
	log := logs[0]
	assert.Equal(t, 1, log.AttemptNumber())
	assert.Equal(t, 0, log.RetryNumber())
	assert.Equal(t, 3, log.MaxAttempts())
	assert.Nil(t, log.PrevDelay())
	require.NotNil(t, log.WorkingTime())
	assert.Equal(t, 100*time.Millisecond, *log.WorkingTime())
	require.NotNil(t, log.NextDelay())
	assert.Equal(t, time.Second, *log.NextDelay())
	assert.Equal(t, time.Duration(0), log.OverallDelay())
}

func TestStateMachine_LogAccumulation(t *testing.T) {
	clock := testutils.NewAutoClock()
	m := newMachine(t, backoff.NewFixed(time.Second), CalculatorConfig{MaxRetries: 2},
		WithStepAtLoopStart(), WithMachineClock(clock))

	for i := 0; i < 3; i++ {
		require.True(t, m.Advance())
		require.NoError(t, m.Wait(context.Background()))
		require.NoError(t, m.StartOfAttempt())
		clock.Advance(50 * time.Millisecond)
		require.NoError(t, m.EndOfAttempt())
	}

	logs := m.Logs()
	require.Len(t, logs, 3)

	last := logs[2]
	assert.Equal(t, 3, last.AttemptNumber())
	require.NotNil(t, last.PrevDelay())
	assert.Equal(t, time.Second, *last.PrevDelay())
	assert.Equal(t, 2*time.Second, last.OverallDelay(), "cumulative delay excludes the next delay")
	assert.Equal(t, 150*time.Millisecond, last.OverallWorkingTime())
	assert.Equal(t, logs[0].ThisAttemptAt(), last.FirstAttemptAt())
	assert.Nil(t, last.NextDelay(), "the ceiling leaves no next delay after attempt 3")
}

func TestStateMachine_DoubleEndIsNoOp(t *testing.T) {
	clock := testutils.NewAutoClock()
	m := newMachine(t, backoff.NewFixed(time.Second), CalculatorConfig{MaxRetries: 2},
		WithStepAtLoopStart(), WithMachineClock(clock))

	require.True(t, m.Advance())
	require.NoError(t, m.StartOfAttempt())
	clock.Advance(10 * time.Millisecond)
	require.NoError(t, m.EndOfAttempt())

	clock.Advance(time.Minute)
	require.NoError(t, m.EndOfAttempt(), "second end is a safe no-op")

	// the earliest completion time wins
	log := m.Logs()[0]
	require.NotNil(t, log.WorkingTime())
	assert.Equal(t, 10*time.Millisecond, *log.WorkingTime())
}

func TestStateMachine_StructuralMisuse(t *testing.T) {
	m := newMachine(t, backoff.NewFixed(time.Second), CalculatorConfig{MaxRetries: 0},
		WithStepAtLoopStart(), WithMachineClock(testutils.NewAutoClock()))

	// ending before any attempt started
	assert.ErrorIs(t, m.EndOfAttempt(), types.ErrAttemptNotStarted)

	// starting before the machine advanced
	assert.ErrorIs(t, m.StartOfAttempt(), types.ErrMachineNotAdvanced)

	require.True(t, m.Advance())
	require.NoError(t, m.StartOfAttempt())
	assert.ErrorIs(t, m.StartOfAttempt(), types.ErrAttemptInProgress)
	require.NoError(t, m.EndOfAttempt())

	// no retries allowed: the machine stops
	require.False(t, m.Advance())
	assert.ErrorIs(t, m.StartOfAttempt(), types.ErrMachineStopped)
}

func TestStateMachine_Reset(t *testing.T) {
	m := newMachine(t, backoff.NewFixed(time.Second), CalculatorConfig{MaxRetries: 0},
		WithStepAtLoopStart(), WithMachineClock(testutils.NewAutoClock()))

	require.True(t, m.Advance())
	require.NoError(t, m.StartOfAttempt())
	require.NoError(t, m.EndOfAttempt())
	require.False(t, m.Advance())
	require.True(t, m.Stopped())

	m.Reset()

	assert.False(t, m.Started())
	assert.False(t, m.Stopped())
	assert.Equal(t, 0, m.CurrentAttemptNumber())
	assert.Empty(t, m.Logs())
	assert.True(t, m.Advance(), "reset leaves Stopped")
}

func TestStateMachine_WaitBlocksUntilClockAdvances(t *testing.T) {
	mock := testutils.NewMockClock(t)
	trap := mock.Trap().NewTimer()
	defer trap.Close()

	m := newMachine(t, backoff.NewFixed(2*time.Second), CalculatorConfig{MaxRetries: 3},
		WithStepAtLoopStart(), WithMachineClock(testutils.NewClockWrapper(mock)))

	require.True(t, m.Advance())
	require.NoError(t, m.StartOfAttempt())
	require.NoError(t, m.EndOfAttempt())
	require.True(t, m.Advance())

	done := make(chan error, 1)
	go func() {
		done <- m.Wait(context.Background())
	}()

	ctx := context.Background()
	call := trap.MustWait(ctx)
	call.MustRelease(ctx)
	assert.Equal(t, 2*time.Second, call.Duration)

	select {
	case <-done:
		t.Fatal("Wait returned before the clock advanced")
	default:
	}

	mock.Advance(2 * time.Second).MustWait(ctx)
	require.NoError(t, <-done)
}
