package backoff

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	delay := 100 * time.Millisecond
	algo := NewFixed(delay)

	for _, n := range []int{1, 2, 3, 10} {
		got, stop := algo.Calculate(n, nil)
		if stop {
			t.Fatalf("Calculate(%d) signalled stop", n)
		}
		if got != delay {
			t.Errorf("Calculate(%d) = %v, want %v", n, got, delay)
		}
	}

	if !algo.JitterApplicable() {
		t.Error("fixed delays should accept jitter")
	}
}

func TestLinear(t *testing.T) {
	algo := NewLinear(100*time.Millisecond, 50*time.Millisecond)

	tests := []struct {
		n    int
		want time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 150 * time.Millisecond},
		{3, 200 * time.Millisecond},
		{10, 550 * time.Millisecond},
	}

	for _, tt := range tests {
		got, stop := algo.Calculate(tt.n, nil)
		if stop {
			t.Fatalf("Calculate(%d) signalled stop", tt.n)
		}
		if got != tt.want {
			t.Errorf("Calculate(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestExponential(t *testing.T) {
	algo := NewExponential(100 * time.Millisecond)

	tests := []struct {
		n    int
		want time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
	}

	for _, tt := range tests {
		got, stop := algo.Calculate(tt.n, nil)
		if stop {
			t.Fatalf("Calculate(%d) signalled stop", tt.n)
		}
		if got != tt.want {
			t.Errorf("Calculate(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestExponentialWithMultiplier(t *testing.T) {
	algo := NewExponential(100*time.Millisecond, WithMultiplier(3.0))

	got, _ := algo.Calculate(3, nil)
	if got != 900*time.Millisecond {
		t.Errorf("Calculate(3) = %v, want 900ms", got)
	}
}

func TestExponentialSaturates(t *testing.T) {
	algo := NewExponential(time.Hour, WithMultiplier(10))

	got, stop := algo.Calculate(30, nil)
	if stop {
		t.Fatal("Calculate(30) signalled stop")
	}
	if got <= 0 {
		t.Errorf("Calculate(30) = %v, want a positive saturated delay", got)
	}
}

func TestPolynomial(t *testing.T) {
	algo := NewPolynomial(10 * time.Millisecond)

	tests := []struct {
		n    int
		want time.Duration
	}{
		{1, 10 * time.Millisecond},
		{2, 40 * time.Millisecond},
		{3, 90 * time.Millisecond},
		{4, 160 * time.Millisecond},
	}

	for _, tt := range tests {
		got, _ := algo.Calculate(tt.n, nil)
		if got != tt.want {
			t.Errorf("Calculate(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestPolynomialWithExponent(t *testing.T) {
	algo := NewPolynomial(10*time.Millisecond, WithExponent(1.0))

	got, _ := algo.Calculate(5, nil)
	if got != 50*time.Millisecond {
		t.Errorf("Calculate(5) = %v, want 50ms", got)
	}
}

func TestFibonacci(t *testing.T) {
	algo := NewFibonacci(10 * time.Millisecond)

	tests := []struct {
		n    int
		want time.Duration
	}{
		{1, 10 * time.Millisecond},
		{2, 10 * time.Millisecond},
		{3, 20 * time.Millisecond},
		{4, 30 * time.Millisecond},
		{5, 50 * time.Millisecond},
		{6, 80 * time.Millisecond},
	}

	for _, tt := range tests {
		got, _ := algo.Calculate(tt.n, nil)
		if got != tt.want {
			t.Errorf("Calculate(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestSequence(t *testing.T) {
	algo := NewSequence([]time.Duration{
		1 * time.Second,
		2 * time.Second,
		3 * time.Second,
	})

	for n, want := range map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 3 * time.Second} {
		got, stop := algo.Calculate(n, nil)
		if stop {
			t.Fatalf("Calculate(%d) signalled stop", n)
		}
		if got != want {
			t.Errorf("Calculate(%d) = %v, want %v", n, got, want)
		}
	}

	// exhaustion stops the sequence
	if _, stop := algo.Calculate(4, nil); !stop {
		t.Error("Calculate(4) should signal stop")
	}
}

func TestSequenceRepeatLast(t *testing.T) {
	algo := NewSequence([]time.Duration{time.Second, 2 * time.Second}, WithRepeatLast())

	got, stop := algo.Calculate(10, nil)
	if stop {
		t.Fatal("Calculate(10) should not stop with repeat-last")
	}
	if got != 2*time.Second {
		t.Errorf("Calculate(10) = %v, want 2s", got)
	}
}

func TestSequenceEmpty(t *testing.T) {
	algo := NewSequence(nil, WithRepeatLast())

	if _, stop := algo.Calculate(1, nil); !stop {
		t.Error("empty sequence should stop immediately")
	}
}

func TestFunc(t *testing.T) {
	algo := NewFunc(func(n int, prev *time.Duration) (time.Duration, bool) {
		if n > 2 {
			return 0, true
		}
		return time.Duration(n) * time.Second, false
	})

	got, stop := algo.Calculate(2, nil)
	if stop || got != 2*time.Second {
		t.Errorf("Calculate(2) = (%v, %v), want (2s, false)", got, stop)
	}
	if _, stop := algo.Calculate(3, nil); !stop {
		t.Error("Calculate(3) should signal stop")
	}
	if !algo.JitterApplicable() {
		t.Error("NewFunc algorithms accept jitter")
	}
	if NewRandomizedFunc(algo.fn).JitterApplicable() {
		t.Error("NewRandomizedFunc algorithms must not be jittered")
	}
}

func TestNoDelay(t *testing.T) {
	algo := NewNoDelay()

	got, stop := algo.Calculate(5, nil)
	if stop || got != 0 {
		t.Errorf("Calculate(5) = (%v, %v), want (0, false)", got, stop)
	}
}
