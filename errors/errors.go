// Package errors provides error handling for entigraph.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Marking errors with sentinel categories without losing the cause
//
// Usage:
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Classify a driver failure as a store IO error
//	return errors.WrapStoreIO(err, "open reader")
//
//	// Check errors
//	if errors.IsNotFoundError(err) {
//	    // render "no such entity"
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Error inspection
var (
	Is         = crdb.Is
	IsAny      = crdb.IsAny
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
)

// Sentinel categories. Wrap or Mark these to add context while keeping
// errors.Is working for callers.
var (
	// ErrNotFound indicates the requested entity does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrSchemaViolation indicates a claim or stored field that does not
	// conform to the property schema. Always recovered locally.
	ErrSchemaViolation = New("schema violation")

	// ErrUnsupportedPattern indicates a triple pattern with no evaluation
	// strategy (bound object without a predicate).
	ErrUnsupportedPattern = New("unsupported triple pattern")

	// ErrStoreIO indicates an underlying storage failure. Retryable from the
	// caller's point of view.
	ErrStoreIO = New("store io failure")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsSchemaViolation checks if an error is or wraps ErrSchemaViolation
func IsSchemaViolation(err error) bool {
	return err != nil && Is(err, ErrSchemaViolation)
}

// IsUnsupportedPatternError checks if an error is or wraps ErrUnsupportedPattern
func IsUnsupportedPatternError(err error) bool {
	return err != nil && Is(err, ErrUnsupportedPattern)
}

// IsStoreIOError checks if an error is or wraps ErrStoreIO
func IsStoreIOError(err error) bool {
	return err != nil && Is(err, ErrStoreIO)
}

// WrapStoreIO marks err as a store IO failure and adds context.
// The original cause stays inspectable with Is/As.
func WrapStoreIO(err error, context string) error {
	if err == nil {
		return nil
	}
	return Wrap(Mark(err, ErrStoreIO), context)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

// NewSchemaViolation creates a schema-violation error with a formatted message
func NewSchemaViolation(format string, args ...interface{}) error {
	return Wrap(ErrSchemaViolation, Newf(format, args...).Error())
}

// NewUnsupportedPattern creates an unsupported-pattern error with a formatted message
func NewUnsupportedPattern(format string, args ...interface{}) error {
	return Wrap(ErrUnsupportedPattern, Newf(format, args...).Error())
}
