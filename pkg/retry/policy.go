// Package retry provides failure-matching policies
package retry

import (
	"errors"
	"reflect"

	"github.com/jzx17/goretry/pkg/types"
)

// resolveDefault materializes a configured fallback value. A func() any
// default is invoked lazily, only when the value is actually needed.
func resolveDefault(v any) any {
	if fn, ok := v.(func() any); ok {
		return fn()
	}
	return v
}

// ErrorMatch is one entry of the error-retry policy: a sentinel error, a
// predicate, or a match-anything wildcard, optionally carrying a fallback
// value returned when retries exhaust on this match.
type ErrorMatch struct {
	target     error
	pred       func(error) bool
	all        bool
	hasDefault bool
	def        any
}

// MatchError matches errors for which errors.Is(err, target) holds
func MatchError(target error) ErrorMatch {
	return ErrorMatch{target: target}
}

// MatchErrorFunc matches errors for which the predicate returns true. A
// predicate entry ranks with sentinel entries in the precedence order.
func MatchErrorFunc(pred func(error) bool) ErrorMatch {
	return ErrorMatch{pred: pred}
}

// MatchAnyError matches every error
func MatchAnyError() ErrorMatch {
	return ErrorMatch{all: true}
}

// MatchRetryable matches errors explicitly marked retryable via
// types.RetryError
func MatchRetryable() ErrorMatch {
	return ErrorMatch{pred: types.IsRetryable}
}

// WithDefault attaches a fallback value to the match. Pass a func() any for a
// lazily computed default.
func (m ErrorMatch) WithDefault(v any) ErrorMatch {
	m.def = v
	m.hasDefault = true
	return m
}

func (m ErrorMatch) matches(err error) bool {
	switch {
	case m.all:
		return true
	case m.pred != nil:
		return m.pred(err)
	case m.target != nil:
		return errors.Is(err, m.target)
	default:
		return false
	}
}

// matchErrorPolicy evaluates the configured entries in four passes, most
// specific first: specific-with-default, wildcard-with-default,
// specific-no-default, wildcard-no-default. Within a pass, registration order
// wins. A narrowly-scoped default therefore always beats a catch-all default,
// and any default beats a matcher with none, regardless of registration order
// across passes.
func matchErrorPolicy(policies []ErrorMatch, err error) (ErrorMatch, bool) {
	passes := [...]func(ErrorMatch) bool{
		func(m ErrorMatch) bool { return !m.all && m.hasDefault },
		func(m ErrorMatch) bool { return m.all && m.hasDefault },
		func(m ErrorMatch) bool { return !m.all && !m.hasDefault },
		func(m ErrorMatch) bool { return m.all && !m.hasDefault },
	}

	for _, pass := range passes {
		for _, m := range policies {
			if pass(m) && m.matches(err) {
				return m, true
			}
		}
	}

	return ErrorMatch{}, false
}

// ResultMatch is one entry of the result-retry policy: a value compared
// against the action's result, a predicate, or a match-anything wildcard,
// optionally carrying a fallback value and a strictness flag.
type ResultMatch struct {
	value      any
	hasValue   bool
	pred       func(any) bool
	all        bool
	strict     bool
	hasDefault bool
	def        any
}

// MatchResult matches results loosely equal to the given value: numeric values
// compare across integer and float types, everything else by deep equality
func MatchResult(v any) ResultMatch {
	return ResultMatch{value: v, hasValue: true}
}

// Strict requires the result's dynamic type to match the value's exactly
func (m ResultMatch) Strict() ResultMatch {
	m.strict = true
	return m
}

// MatchResultFunc matches results for which the predicate returns true
func MatchResultFunc(pred func(any) bool) ResultMatch {
	return ResultMatch{pred: pred}
}

// MatchAnyResult matches every result
func MatchAnyResult() ResultMatch {
	return ResultMatch{all: true}
}

// WithDefault attaches a fallback value to the match. Pass a func() any for a
// lazily computed default.
func (m ResultMatch) WithDefault(v any) ResultMatch {
	m.def = v
	m.hasDefault = true
	return m
}

func (m ResultMatch) matches(result any) bool {
	switch {
	case m.all:
		return true
	case m.pred != nil:
		return m.pred(result)
	case m.hasValue:
		if m.strict {
			return strictEqual(m.value, result)
		}
		return looseEqual(m.value, result)
	default:
		return false
	}
}

func strictEqual(a, b any) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// looseEqual compares numeric values across integer and float types and falls
// back to deep equality for everything else
func looseEqual(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// matchResultPolicy evaluates result-policy entries with the same four-pass
// precedence used for errors
func matchResultPolicy(policies []ResultMatch, result any) (ResultMatch, bool) {
	passes := [...]func(ResultMatch) bool{
		func(m ResultMatch) bool { return !m.all && m.hasDefault },
		func(m ResultMatch) bool { return m.all && m.hasDefault },
		func(m ResultMatch) bool { return !m.all && !m.hasDefault },
		func(m ResultMatch) bool { return m.all && !m.hasDefault },
	}

	for _, pass := range passes {
		for _, m := range policies {
			if pass(m) && m.matches(result) {
				return m, true
			}
		}
	}

	return ResultMatch{}, false
}
