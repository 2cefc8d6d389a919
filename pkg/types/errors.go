// Package types defines error types
package types

import (
	"errors"
	"fmt"
	"time"
)

// Predefined configuration errors. These surface from constructors, are never
// retried, and indicate the caller wired the engine together incorrectly.
var (
	// ErrInvalidUnit indicates an unknown unit of measure
	ErrInvalidUnit = errors.New("invalid unit of measure")

	// ErrInvalidRange indicates a minimum delay greater than the maximum
	ErrInvalidRange = errors.New("minimum delay exceeds maximum delay")

	// ErrNoAlgorithm indicates no backoff algorithm was configured
	ErrNoAlgorithm = errors.New("no backoff algorithm configured")
)

// Predefined structural errors. These indicate a protocol violation against the
// attempt state machine rather than a failure of the caller's action.
var (
	// ErrMachineStopped indicates an attempt was started after the state
	// machine reached its terminal state
	ErrMachineStopped = errors.New("state machine is stopped")

	// ErrMachineNotAdvanced indicates an attempt was started before the state
	// machine was stepped
	ErrMachineNotAdvanced = errors.New("state machine has not been advanced")

	// ErrAttemptNotStarted indicates an attempt was ended without a matching start
	ErrAttemptNotStarted = errors.New("attempt was never started")

	// ErrAttemptInProgress indicates an attempt was started while the previous
	// one was still open
	ErrAttemptInProgress = errors.New("previous attempt has not ended")
)

// ConfigError wraps a configuration error with the offending setting name.
type ConfigError struct {
	// Setting is the name of the configuration knob that was rejected
	Setting string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %v", e.Setting, e.Cause)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *ConfigError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewConfigError creates a new configuration error
func NewConfigError(setting string, cause error) *ConfigError {
	return &ConfigError{Setting: setting, Cause: cause}
}

// RetryError classifies an error as retryable or not, optionally carrying a
// suggested delay before the next attempt.
type RetryError struct {
	// Err is the underlying error
	Err error

	// Retryable indicates whether the error is retryable
	Retryable bool

	// RetryAfter is the suggested retry delay
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RetryError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *RetryError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error is explicitly marked retryable
func IsRetryable(err error) bool {
	var retryErr *RetryError
	if errors.As(err, &retryErr) {
		return retryErr.Retryable
	}
	return false
}

// SuggestedDelay returns the delay suggested by a RetryError, if any
func SuggestedDelay(err error) time.Duration {
	var retryErr *RetryError
	if errors.As(err, &retryErr) {
		return retryErr.RetryAfter
	}
	return 0
}
