// Package errors provides custom error types for the harvestsync system.
// The types classify failures of a reconciliation run: fetch and write
// failures are fatal to a run, resolution failures are recoverable and only
// skip a single record.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the harvestsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetch indicates that a snapshot could not be fetched
	ErrFetch = errors.New("fetch failed")

	// ErrIncomplete indicates that a snapshot holds fewer records than exist
	ErrIncomplete = errors.New("incomplete snapshot")

	// ErrWrite indicates that a create or update call failed
	ErrWrite = errors.New("write failed")

	// ErrUnresolved indicates that a cross-reference could not be resolved
	ErrUnresolved = errors.New("unresolved cross-reference")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates that a remote system is temporarily unavailable
	ErrUnavailable = errors.New("system unavailable")

	// ErrUnauthorized indicates that credentials were rejected
	ErrUnauthorized = errors.New("unauthorized")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
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

// APIError represents an error response from the Rentman or Harvest API
type APIError struct {
	System     string // "rentman" or "harvest"
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.System, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.System, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode == 401 || e.StatusCode == 403:
		return target == ErrUnauthorized
	case e.StatusCode >= 500:
		return target == ErrUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(system string, statusCode int, message string) *APIError {
	return &APIError{
		System:     system,
		StatusCode: statusCode,
		Message:    message,
	}
}

// FetchError represents a failure to fetch a snapshot from a collaborator.
// It is fatal to the run: no writes are attempted after it.
type FetchError struct {
	System   string // "rentman" or "harvest"
	Resource string // "contacts", "projects", "subprojects", "clients"
	Err      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.System, e.Resource, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// NewFetchError creates a new FetchError
func NewFetchError(system, resource string, err error) *FetchError {
	return &FetchError{System: system, Resource: resource, Err: err}
}

// IncompleteSnapshotError is returned when a listing reports more records
// than could be collected.
type IncompleteSnapshotError struct {
	System   string
	Resource string
	Returned int
	Total    int
}

// Error implements the error interface
func (e *IncompleteSnapshotError) Error() string {
	if e.Total > 0 {
		return fmt.Sprintf("not all %s %s were fetched: got %d of %d", e.System, e.Resource, e.Returned, e.Total)
	}
	return fmt.Sprintf("not all %s %s were fetched: got %d", e.System, e.Resource, e.Returned)
}

// Is implements errors.Is support
func (e *IncompleteSnapshotError) Is(target error) bool {
	return target == ErrIncomplete || target == ErrFetch
}

// ResolutionError describes a cross-reference that could not be resolved to
// a Harvest client. It is recoverable: the affected record is skipped.
type ResolutionError struct {
	Resource   string // what was being resolved, e.g. "client"
	SourceID   int64  // Rentman project id
	CustomerID int64  // Rentman contact id that had no Harvest client
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no %s with cross-reference %d for project %d", e.Resource, e.CustomerID, e.SourceID)
}

// Is implements errors.Is support
func (e *ResolutionError) Is(target error) bool {
	return target == ErrUnresolved
}

// NewResolutionError creates a new ResolutionError
func NewResolutionError(resource string, sourceID, customerID int64) *ResolutionError {
	return &ResolutionError{Resource: resource, SourceID: sourceID, CustomerID: customerID}
}

// WriteError represents a failed create or update call against Harvest.
// It is fatal to the run; earlier writes of the same run stay applied.
type WriteError struct {
	Operation string // "create", "update"
	Resource  string // "client", "project"
	ID        string
	Err       error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %v", e.Operation, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Resource, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}

// NewWriteError creates a new WriteError
func NewWriteError(operation, resource, id string, err error) *WriteError {
	return &WriteError{Operation: operation, Resource: resource, ID: id, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "uri", ...
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
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

// IsFetch checks if an error is a fetch failure (including incomplete snapshots)
func IsFetch(err error) bool {
	return errors.Is(err, ErrFetch)
}

// IsIncomplete checks if an error reports an incomplete snapshot
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}

// IsWrite checks if an error is a write failure
func IsWrite(err error) bool {
	return errors.Is(err, ErrWrite)
}

// IsUnresolved checks if an error is a recoverable resolution failure
func IsUnresolved(err error) bool {
	return errors.Is(err, ErrUnresolved)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsFatal reports whether err must end the current run.
// Fetch and write failures are fatal; resolution failures are not.
func IsFatal(err error) bool {
	if err == nil || IsUnresolved(err) {
		return false
	}
	return true
}

// IsRetryable reports whether a fatal error is worth retrying on the next run.
// Rejected credentials and validation problems will fail the same way again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) || IsValidationError(err) {
		return false
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return false
	}
	return IsFetch(err) || IsWrite(err) || IsRateLimited(err) || errors.Is(err, ErrUnavailable)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapFetch wraps an error as a FetchError
func WrapFetch(system, resource string, err error) error {
	if err == nil {
		return nil
	}
	return NewFetchError(system, resource, err)
}
