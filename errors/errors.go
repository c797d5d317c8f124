// Package errors provides error handling for the tag attribute engine.
//
// It re-exports github.com/cockroachdb/errors so every package gets stack
// traces, hints and details from a single import, and defines the sentinel
// errors that classify tag attribute failures:
//
//	ErrConfigurationInvalid  source table or columns missing (handled locally)
//	ErrTranslationFailed     widget input could not be mapped to value ids
//	ErrInvalidArgument       malformed call arguments, nothing was changed
//	ErrQueryFailed           an administrator predicate failed its dry run
//	ErrConflict              another save stored the same relation first
//
// Usage:
//
//	if errors.Is(err, errors.ErrTranslationFailed) {
//	    // reject the widget input, show errors.GetAllDetails(err)
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New         = crdb.New
	Newf        = crdb.Newf
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	WithStack   = crdb.WithStack
	WithMessage = crdb.WithMessage
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// GetStack returns the reportable stack trace attached to err, if any.
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors. Wrap them with errors.Wrap to add context while keeping
// errors.Is working.
var (
	// ErrConfigurationInvalid indicates the attribute source is not usable
	// (missing table, display column or linked collection).
	ErrConfigurationInvalid = New("attribute not properly configured")

	// ErrTranslationFailed indicates widget input could not be resolved to
	// any value id.
	ErrTranslationFailed = New("could not translate value")

	// ErrInvalidArgument indicates malformed call arguments.
	ErrInvalidArgument = New("invalid argument")

	// ErrQueryFailed indicates a configured query fragment failed to execute.
	ErrQueryFailed = New("query failed")

	// ErrNotFound indicates a collection or filter definition does not exist.
	ErrNotFound = New("not found")

	// ErrConflict indicates a relation row already exists for the same
	// attribute, item and value.
	ErrConflict = New("conflicting relation")
)

// IsConfigurationInvalid checks if an error is or wraps ErrConfigurationInvalid
func IsConfigurationInvalid(err error) bool {
	return err != nil && Is(err, ErrConfigurationInvalid)
}

// IsTranslationFailed checks if an error is or wraps ErrTranslationFailed
func IsTranslationFailed(err error) bool {
	return err != nil && Is(err, ErrTranslationFailed)
}

// IsInvalidArgument checks if an error is or wraps ErrInvalidArgument
func IsInvalidArgument(err error) bool {
	return err != nil && Is(err, ErrInvalidArgument)
}

// IsQueryFailed checks if an error is or wraps ErrQueryFailed
func IsQueryFailed(err error) bool {
	return err != nil && Is(err, ErrQueryFailed)
}

// IsNotFound checks if an error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsConflict checks if an error is or wraps ErrConflict
func IsConflict(err error) bool {
	return err != nil && Is(err, ErrConflict)
}

// NewTranslationFailed creates a translation error recording the raw input
// that could not be resolved.
func NewTranslationFailed(raw interface{}) error {
	return WithDetailf(Wrapf(ErrTranslationFailed, "value %v", raw), "raw input: %#v", raw)
}

// NewInvalidArgument creates an invalid-argument error with a formatted message
func NewInvalidArgument(format string, args ...interface{}) error {
	return Wrap(ErrInvalidArgument, Newf(format, args...).Error())
}

// NewNotFound creates a not-found error with a formatted message
func NewNotFound(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// WrapQueryFailed marks a driver error as a failed configured query.
func WrapQueryFailed(err error, context string) error {
	if err == nil {
		return nil
	}
	return withSecondary(Wrap(ErrQueryFailed, context), err)
}

// WrapConflict marks a driver constraint error as a relation conflict.
func WrapConflict(err error, context string) error {
	if err == nil {
		return nil
	}
	return withSecondary(Wrap(ErrConflict, context), err)
}

// withSecondary attaches cause as secondary error so both messages survive.
func withSecondary(err, cause error) error {
	return WithMessage(crdb.WithSecondaryError(err, cause), cause.Error())
}
