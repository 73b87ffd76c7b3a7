// Package errors provides the error taxonomy for the marclink engine.
// Validation failures surface immediately and are never retried; not-found
// outcomes are normal control flow unless a caller requires exactly one
// match; integration failures are retried at the emission boundary and
// escalate once retries are exhausted.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the marclink engine
var (
	// ErrNotFound indicates that a requested record or rule was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input or configuration was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrIntegration indicates that a downstream store or transport is unavailable
	ErrIntegration = errors.New("integration failure")

	// ErrUnsupportedOperation indicates an operation not supported for a record type
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// SuggestionCode is the reported outcome code of a failed link suggestion.
type SuggestionCode string

// Suggestion outcome codes, spelled exactly as they appear on the wire.
const (
	NoSuggestions          SuggestionCode = "NO_SUGGESTIONS"
	MoreThenOneSuggestions SuggestionCode = "MORE_THEN_ONE_SUGGESTIONS"
	DisabledAutoLinking    SuggestionCode = "DISABLED_AUTO_LINKING"
)

// ValidationError represents a validation failure: malformed rule
// configuration, a failed link constraint, or malformed collaborator
// wiring. Never retried.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// SuggestionError reports a suggestion lookup that did not produce exactly
// one match for a field that requires one.
type SuggestionError struct {
	Code     SuggestionCode
	BibField string
}

// Error implements the error interface
func (e *SuggestionError) Error() string {
	if e.BibField != "" {
		return fmt.Sprintf("suggestion for field %s: %s", e.BibField, e.Code)
	}
	return string(e.Code)
}

// Is implements errors.Is support
func (e *SuggestionError) Is(target error) bool {
	return target == ErrNotFound
}

// NewSuggestionError creates a new SuggestionError
func NewSuggestionError(code SuggestionCode, bibField string) *SuggestionError {
	return &SuggestionError{Code: code, BibField: bibField}
}

// IntegrationError represents a downstream store or transport failure,
// reported after the emission boundary has exhausted its retries.
type IntegrationError struct {
	System   string // "kafka", "authority-store", "settings"
	Topic    string
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *IntegrationError) Error() string {
	if e.Topic != "" {
		return fmt.Sprintf("integration failure on %s (topic %s) after %d attempts: %v",
			e.System, e.Topic, e.Attempts, e.Err)
	}
	return fmt.Sprintf("integration failure on %s: %v", e.System, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IntegrationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *IntegrationError) Is(target error) bool {
	return target == ErrIntegration
}

// NewIntegrationError creates a new IntegrationError
func NewIntegrationError(system, topic string, attempts int, err error) *IntegrationError {
	return &IntegrationError{System: system, Topic: topic, Attempts: attempts, Err: err}
}

// TenantFailure records one member tenant's replay failure during consortium
// propagation.
type TenantFailure struct {
	Tenant string
	Err    error
}

// PropagationError aggregates the outcome of a consortium fan-out: which
// member tenants succeeded and which failed, in list order.
type PropagationError struct {
	Operation string
	Succeeded []string
	Failures  []TenantFailure
}

// Error implements the error interface
func (e *PropagationError) Error() string {
	tenants := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		tenants[i] = f.Tenant
	}
	return fmt.Sprintf("propagation of %s failed for %d of %d tenants: %s",
		e.Operation, len(e.Failures), len(e.Failures)+len(e.Succeeded),
		strings.Join(tenants, ", "))
}

// Unwrap returns the per-tenant failures for errors.Is/As traversal.
func (e *PropagationError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// RecordError represents a single malformed notification excluded from its
// batch. Isolated per item; never aborts the remaining notifications.
type RecordError struct {
	AuthorityID string
	Reason      string
	Err         error
}

// Error implements the error interface
func (e *RecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("notification for authority %s dropped: %s: %v", e.AuthorityID, e.Reason, e.Err)
	}
	return fmt.Sprintf("notification for authority %s dropped: %s", e.AuthorityID, e.Reason)
}

// Unwrap implements errors.Unwrap
func (e *RecordError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsIntegration checks if an error is an integration failure
func IsIntegration(err error) bool {
	return errors.Is(err, ErrIntegration)
}

// IsUnsupportedOperation checks if an error is an unsupported-operation error
func IsUnsupportedOperation(err error) bool {
	return errors.Is(err, ErrUnsupportedOperation)
}

// SuggestionCodeOf extracts the suggestion outcome code from an error chain,
// or the empty code if the error is not a suggestion failure.
func SuggestionCodeOf(err error) SuggestionCode {
	var se *SuggestionError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
