package storage

import (
	"errors"
	"fmt"
)

// Kind classifies an object-store failure for callers.
type Kind string

const (
	KindValidation     Kind = "validation_failed"
	KindCredentials    Kind = "credentials_missing"
	KindBucketNotFound Kind = "bucket_not_found"
	KindAccessDenied   Kind = "access_denied"
	KindTransient      Kind = "transient_backend_error"
	KindInvalidURL     Kind = "invalid_url"
)

// Error is a storage failure with a distinguishable kind. Validation
// failures carry the offending value in Detail; transient failures
// carry the backend detail.
type Error struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, cause: cause}
}

// NewValidationError reports a rejected upload with its reason.
func NewValidationError(format string, args ...any) *Error {
	return newError(KindValidation, fmt.Sprintf(format, args...), nil)
}

// KindOf extracts the storage kind of err, or KindTransient if it is
// not a storage error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindTransient
}

// IsValidation reports whether err is a rejected-upload error.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
