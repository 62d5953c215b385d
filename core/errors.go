package core

import "github.com/pkg/errors"

// ErrPermissionDenied is returned by write paths when the acting principal's
// role does not allow the mutation.
var ErrPermissionDenied = errors.New("permission denied")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// StoreError indicates that the backing data store failed or is unreachable.
// It is fatal to the current operation only and is always surfaced to the caller;
// the core never retries.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func (e StoreError) Error() string {
	if e.Err == nil {
		return e.Op + ": store unavailable"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e StoreError) Unwrap() error { return e.Err }

func IsStoreError(err error) bool {
	_, ok := errors.Cause(err).(*StoreError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
