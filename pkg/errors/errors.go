package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure for callers that render results instead of errors.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindTransport    Kind = "transport"
	KindFormat       Kind = "format"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// TransportReason narrows a TransportError.
type TransportReason string

const (
	ReasonNetwork   TransportReason = "network"
	ReasonStatus    TransportReason = "status"
	ReasonDecode    TransportReason = "decode"
	ReasonTimeout   TransportReason = "timeout"
	ReasonCancelled TransportReason = "cancelled"
)

// ValidationError is returned when caller input is rejected before any upstream call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Message)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

// TransportError describes a failed upstream call.
type TransportError struct {
	Reason     TransportReason
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream %s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	case e.Message != "":
		return fmt.Sprintf("upstream %s %s failed (%s): %s", e.Method, e.Path, e.Reason, e.Message)
	default:
		return fmt.Sprintf("upstream %s %s failed (%s)", e.Method, e.Path, e.Reason)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same request may succeed.
func (e *TransportError) Temporary() bool {
	switch e.Reason {
	case ReasonNetwork, ReasonTimeout:
		return true
	case ReasonStatus:
		return e.StatusCode >= 500 || e.StatusCode == 429
	default:
		return false
	}
}

// FormatError is returned when an upstream payload lacks a field essential to identity.
type FormatError struct {
	Entity string
	Field  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s payload: missing %s", e.Entity, e.Field)
}

// ErrNotFound is returned for unknown resources, operations or records.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when a gateway client cannot be authenticated.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Message)
}

// NewValidation builds a ValidationError.
func NewValidation(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// KindOf maps err onto the failure taxonomy. Unrecognised errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var (
		validationErr   *ValidationError
		transportErr    *TransportError
		formatErr       *FormatError
		notFoundErr     *ErrNotFound
		unauthorizedErr *ErrUnauthorized
	)

	switch {
	case stderrors.As(err, &validationErr):
		return KindValidation
	case stderrors.As(err, &transportErr):
		return KindTransport
	case stderrors.As(err, &formatErr):
		return KindFormat
	case stderrors.As(err, &notFoundErr):
		return KindNotFound
	case stderrors.As(err, &unauthorizedErr):
		return KindUnauthorized
	default:
		return KindInternal
	}
}
