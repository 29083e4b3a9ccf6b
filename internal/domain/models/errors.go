package models

import (
	"errors"
	"fmt"
)

// ErrInsufficientData marks a symbol for which no enabled agent produced a
// usable insight. Fatal for that symbol only; a batch keeps going.
var ErrInsufficientData = errors.New("insufficient data: no agent produced a usable insight")

// DataUnavailableError is a per-agent, recoverable failure: the dataset lacks
// the fields the agent needs (or the agent timed out). The orchestrator records
// it as a skipped insight and excludes the agent from combination.
type DataUnavailableError struct {
	Agent  string
	Reason string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s: data unavailable: %s", e.Agent, e.Reason)
}

// DataUnavailable builds a DataUnavailableError with a formatted reason.
func DataUnavailable(agent, format string, a ...interface{}) *DataUnavailableError {
	return &DataUnavailableError{Agent: agent, Reason: fmt.Sprintf(format, a...)}
}

// IsDataUnavailable reports whether err is a per-agent data failure.
func IsDataUnavailable(err error) bool {
	var due *DataUnavailableError
	return errors.As(err, &due)
}

// ConfigError rejects an invalid agent configuration before any run starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// ConfigErrorf builds a ConfigError with a formatted reason.
func ConfigErrorf(field, format string, a ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, a...)}
}

// IsConfigError reports whether err is a configuration rejection.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
