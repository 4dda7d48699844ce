package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInvalidConfig marks configuration rejected at the pipeline boundary.
	// Everything wrapped in it is recoverable by supplying corrected settings.
	ErrInvalidConfig = errors.New("invalid configuration")

	// Degraded-data conditions. These are never returned from a pipeline run;
	// they exist for callers that probe components directly.
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrFieldUnavailable = errors.New("field unavailable in dataset")
)

// ConfigError describes a single offending configuration parameter.
// It wraps ErrInvalidConfig so callers can detect the whole class with errors.Is.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Param, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NewConfigError creates a structured configuration error for one parameter.
func NewConfigError(param, reason string) error {
	return &ConfigError{Param: param, Reason: reason}
}

// NewConfigErrorf is NewConfigError with a formatted reason.
func NewConfigErrorf(param, format string, args ...interface{}) error {
	return &ConfigError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError checks whether err belongs to the configuration error class.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// ConfigParam returns the offending parameter name, or "" for other errors.
func ConfigParam(err error) string {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Param
	}
	return ""
}
