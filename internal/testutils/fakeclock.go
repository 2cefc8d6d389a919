package testutils

import (
	"sync"
	"time"

	"github.com/jzx17/goretry/pkg/types"
)

// AutoClock is a deterministic clock for single-goroutine tests: timers fire
// immediately, advancing the clock by the requested duration and recording it.
// Waits() then exposes the exact sleep durations the code under test asked
// for, without any real sleeping.
type AutoClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

// NewAutoClock creates an auto-advancing clock at a fixed epoch
func NewAutoClock() *AutoClock {
	return &AutoClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time
func (c *AutoClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Since returns the fake time elapsed since t
func (c *AutoClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Advance moves the clock forward without recording a wait. Used to simulate
// time spent working between Advance and Wait.
func (c *AutoClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Waits returns the durations of all timer-based waits observed so far
func (c *AutoClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.waits))
	copy(out, c.waits)
	return out
}

func (c *AutoClock) fire(d time.Duration) chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

// After returns a channel that has already been delivered the advanced time
func (c *AutoClock) After(d time.Duration) <-chan time.Time {
	return c.fire(d)
}

// Sleep advances the clock without blocking
func (c *AutoClock) Sleep(d time.Duration) {
	c.fire(d)
}

// NewTimer creates a timer that has already fired
func (c *AutoClock) NewTimer(d time.Duration) types.Timer {
	return &autoTimer{ch: c.fire(d)}
}

// NewTicker creates a ticker whose first tick has already fired
func (c *AutoClock) NewTicker(d time.Duration) types.Ticker {
	return &autoTicker{ch: c.fire(d)}
}

type autoTimer struct {
	ch chan time.Time
}

func (t *autoTimer) C() <-chan time.Time { return t.ch }

func (t *autoTimer) Stop() bool { return false }

func (t *autoTimer) Reset(d time.Duration) bool { return false }

type autoTicker struct {
	ch chan time.Time
}

func (t *autoTicker) C() <-chan time.Time { return t.ch }

func (t *autoTicker) Stop() {}

func (t *autoTicker) Reset(d time.Duration) {}

var _ types.Clock = (*AutoClock)(nil)
