package model

import (
	"errors"
	"fmt"
)

// ConfigError reports a missing or invalid pattern or term source. It is
// fatal for the run and never retried.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Source == "" {
		return "configuration: " + e.Err.Error()
	}
	return fmt.Sprintf("configuration: %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError wraps err as a configuration failure for source.
func NewConfigError(source string, err error) *ConfigError {
	return &ConfigError{Source: source, Err: err}
}

// ProviderError reports a failed search-provider call: non-success status,
// timeout, or missing credentials. The whole screening fails with it.
type ProviderError struct {
	QueryID    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.QueryID == "" {
		return "search provider: " + e.Err.Error()
	}
	return fmt.Sprintf("search provider (query %s): %v", e.QueryID, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a provider failure for queryID.
func NewProviderError(queryID string, statusCode int, err error) *ProviderError {
	return &ProviderError{QueryID: queryID, StatusCode: statusCode, Err: err}
}

// ValidationError rejects caller input before any provider call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsConfigError reports whether err has a ConfigError in its chain.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsProviderError reports whether err has a ProviderError in its chain.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err has a ValidationError in its chain.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
