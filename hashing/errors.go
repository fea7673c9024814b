package hashing

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by hashing operations.
//
// Use [errors.Is] for comparisons:
//
//	_, err := hashing.Hash(password, spec)
//	if errors.Is(err, hashing.ErrInvalidConfiguration) {
//	    // algorithm or salt mode is not recognised
//	}
var (
	// ErrInvalidConfiguration is returned when a [Spec] names an algorithm
	// that is not registered or a salt mode outside [SaltModes].  The
	// concrete error is a [*ConfigError] identifying the offending field.
	ErrInvalidConfiguration = errors.New("hashing: invalid configuration")

	// ErrEmptyAlgorithm is returned by [Registry.Register] when the supplied
	// algorithm name is an empty string.
	ErrEmptyAlgorithm = errors.New("hashing: algorithm name must not be empty")

	// ErrNilFactory is returned by [Registry.Register] when a nil [Factory]
	// is supplied.
	ErrNilFactory = errors.New("hashing: factory must not be nil")
)

// ConfigError reports which field of a hashing or benchmark configuration
// was rejected.  It matches [ErrInvalidConfiguration] under [errors.Is].
type ConfigError struct {
	// Field is the external name of the rejected field, e.g. "algorithm".
	Field string

	// Value is the rejected value as supplied by the caller.
	Value any

	// Reason optionally narrows down why Value was rejected.
	Reason string
}

// NewConfigError returns a [*ConfigError] for field.
func NewConfigError(field string, value any, reason string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s %q is not recognised", ErrInvalidConfiguration, e.Field, fmt.Sprint(e.Value))
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrInvalidConfiguration, e.Field, fmt.Sprint(e.Value), e.Reason)
}

// Is reports whether target is [ErrInvalidConfiguration].
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
