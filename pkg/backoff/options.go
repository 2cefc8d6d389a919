package backoff

import "math/rand"

// Option configures an algorithm or jitter strategy. Options that do not apply
// to the target are ignored.
type Option interface {
	apply(target any)
}

type option struct {
	multiplier *float64
	exponent   *float64
	repeatLast *bool
	rnd        *rand.Rand
}

func (o *option) apply(target any) {
	switch t := target.(type) {
	case *Exponential:
		if o.multiplier != nil {
			t.multiplier = *o.multiplier
		}
	case *Polynomial:
		if o.exponent != nil {
			t.exponent = *o.exponent
		}
	case *Sequence:
		if o.repeatLast != nil {
			t.repeatLast = *o.repeatLast
		}
	case *Random:
		if o.rnd != nil {
			t.rnd = o.rnd
		}
	case *Decorrelated:
		if o.rnd != nil {
			t.rnd = o.rnd
		}
	case *FullJitter:
		if o.rnd != nil {
			t.rnd = o.rnd
		}
	case *EqualJitter:
		if o.rnd != nil {
			t.rnd = o.rnd
		}
	case *RangeJitter:
		if o.rnd != nil {
			t.rnd = o.rnd
		}
	}
}

// WithMultiplier sets the growth factor for exponential backoff
func WithMultiplier(multiplier float64) Option {
	return &option{multiplier: &multiplier}
}

// WithExponent sets the exponent for polynomial backoff
func WithExponent(exponent float64) Option {
	return &option{exponent: &exponent}
}

// WithRepeatLast makes a sequence repeat its last delay instead of stopping
// once the list is exhausted
func WithRepeatLast() Option {
	repeat := true
	return &option{repeatLast: &repeat}
}

// WithRand injects a deterministic random source into a randomized algorithm
// or jitter strategy
func WithRand(rnd *rand.Rand) Option {
	return &option{rnd: rnd}
}
