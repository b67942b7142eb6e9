package model

import (
	"errors"
	"fmt"
)

// ErrPanelNotFound is returned when an inventory operation names an unknown panel ID.
var ErrPanelNotFound = errors.New("panel not found")

// ConfigurationError reports invalid layout input detected before placement starts.
// A forced panel that cannot fit the wall on its own is reported this way rather
// than being silently dropped.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s=%s: %s", e.Field, e.Value, e.Reason)
}

// NewConfigurationError builds a ConfigurationError.
func NewConfigurationError(field, value, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
