package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation_failed"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "access_denied"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindStorage      ErrorKind = "storage_error"
	KindInternal     ErrorKind = "internal_error"
)

// Error is a domain error with a machine-readable kind and a
// human-readable message. Internal detail never leaks through Message.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewValidationError reports user-correctable input problems.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewUnauthorizedError reports a missing or invalid authentication.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewForbiddenError reports a failed policy check without entity detail.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewNotFoundError reports an absent entity of the given type.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewConflictError reports a uniqueness or concurrent-modification conflict.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewStorageError reports an object-storage backend failure.
func NewStorageError(message string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: message, cause: cause}
}

// NewInternalError reports an unexpected failure. Message stays generic
// at the transport boundary; cause carries the detail for logs.
func NewInternalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf extracts the domain kind of err, or KindInternal if it is not
// a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given domain kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
