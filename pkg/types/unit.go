// Package types provides the unit-of-measure tag for delay reporting
package types

import "time"

// Unit is the unit of measure delays are reported in. Delays are stored as
// time.Duration internally; the unit only affects scalar accessors and display.
type Unit int

const (
	// Seconds reports delays in seconds
	Seconds Unit = iota

	// Milliseconds reports delays in milliseconds
	Milliseconds

	// Microseconds reports delays in microseconds
	Microseconds
)

// String returns the unit name
func (u Unit) String() string {
	switch u {
	case Seconds:
		return "seconds"
	case Milliseconds:
		return "milliseconds"
	case Microseconds:
		return "microseconds"
	default:
		return "unknown"
	}
}

// Validate reports whether the unit is one of the known units
func (u Unit) Validate() error {
	switch u {
	case Seconds, Milliseconds, Microseconds:
		return nil
	default:
		return ErrInvalidUnit
	}
}

// Scalar converts a duration to a scalar in this unit. Exact for milliseconds
// and microseconds; fractional seconds are lossy but consistent.
func (u Unit) Scalar(d time.Duration) float64 {
	switch u {
	case Milliseconds:
		return float64(d) / float64(time.Millisecond)
	case Microseconds:
		return float64(d) / float64(time.Microsecond)
	default:
		return d.Seconds()
	}
}

// Duration converts a scalar in this unit back to a duration.
func (u Unit) Duration(v float64) time.Duration {
	switch u {
	case Milliseconds:
		return time.Duration(v * float64(time.Millisecond))
	case Microseconds:
		return time.Duration(v * float64(time.Microsecond))
	default:
		return time.Duration(v * float64(time.Second))
	}
}
