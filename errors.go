package jdoc

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures.
type ErrorKind string

// Error kinds.
const (
	ErrUnparseableSource       ErrorKind = "unparseable-source"
	ErrGenerationTransient     ErrorKind = "generation-transient"
	ErrGenerationInvalidFormat ErrorKind = "invalid-format"
	ErrGenerationFailed        ErrorKind = "generation-failed"
	ErrBackupFailed            ErrorKind = "backup-failed"
	ErrWriteFailed             ErrorKind = "write-failed"
	ErrReadFailed              ErrorKind = "read-failed"
	ErrCanceled                ErrorKind = "canceled"
	ErrPatchRejected           ErrorKind = "patch-rejected"
)

// Error is a classified pipeline error.
type Error struct {
	Kind    ErrorKind
	Path    string
	Element string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Element != "" {
		msg += " (" + e.Element + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf returns an Error of the given kind with a formatted cause.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// ErrorKindOf returns the kind of err. Context cancellation maps to
// ErrCanceled; unclassified errors map to ErrGenerationFailed.
func ErrorKindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return ErrCanceled
	}
	return ErrGenerationFailed
}

// ProviderErrorKind classifies failures of a text-generation provider.
type ProviderErrorKind int

// Provider error kinds.
const (
	ProviderUnknown ProviderErrorKind = iota
	ProviderTransient
	ProviderRateLimited
	ProviderInvalidRequest
)

// String returns the name of the kind.
func (k ProviderErrorKind) String() string {
	switch k {
	case ProviderTransient:
		return "transient"
	case ProviderRateLimited:
		return "rate-limited"
	case ProviderInvalidRequest:
		return "invalid-request"
	default:
		return "unknown"
	}
}

// ProviderError is returned by TextGenerator implementations.
type ProviderError struct {
	Kind       ProviderErrorKind
	StatusCode int // HTTP status when known
	Message    string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Retryable reports whether the request may succeed when repeated.
func (e *ProviderError) Retryable() bool {
	return e.Kind == ProviderTransient || e.Kind == ProviderRateLimited
}

// ProviderKindForStatus maps an HTTP status code to a provider error kind.
func ProviderKindForStatus(code int) ProviderErrorKind {
	switch {
	case code == 429:
		return ProviderRateLimited
	case code == 408 || code == 500 || code == 502 || code == 503 || code == 504 || code == 529:
		return ProviderTransient
	case code >= 400 && code < 500:
		return ProviderInvalidRequest
	default:
		return ProviderUnknown
	}
}
