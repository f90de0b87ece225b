package models

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks errors that must stop the process before the
// simulation starts ticking.
var ErrConfiguration = errors.New("configuration error")

// ConfigError describes one invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

// NewConfigError creates a ConfigError for field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrConfiguration) match.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
