// Package apperr defines the typed error taxonomy used by the aggregate
// services. The core never carries transport status codes; handlers map an
// error's kind to an HTTP status at the boundary.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for callers deciding how to react (retry,
// surface to the user, treat as a bug).
type Kind int

const (
	KindInternal Kind = iota
	// KindValidation covers malformed or missing input, including a bulk
	// reorder whose assignment set does not match the project's tasks.
	KindValidation
	// KindNotFound means the referenced aggregate does not exist.
	KindNotFound
	// KindAuthorization means the requester is authenticated but not the owner.
	KindAuthorization
	// KindConflict covers uniqueness violations such as a duplicate email.
	KindConflict
	// KindAborted means a transaction could not commit (conflict or timeout).
	// Distinct from validation and not-found so callers can decide to retry.
	KindAborted
	// KindUnauthenticated means the bearer credential could not be resolved.
	KindUnauthenticated
	// KindUpstream means the task generation service failed.
	KindUpstream
)

// FieldViolation names one invalid input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a typed application error. Fields is populated for validation
// errors and enumerates every violated field, not just the first.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldViolation
	Err     error
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		return e.Message + " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// FieldsOf returns the field violations attached to err, if any.
func FieldsOf(err error) []FieldViolation {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}

// Validation builds a validation error enumerating the violated fields.
func Validation(msg string, fields ...FieldViolation) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// NotFound builds a not-found error for the named aggregate.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Authorization builds an access-denied error.
func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// Conflict builds a uniqueness-violation error.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Aborted wraps a transaction failure (conflict or timeout).
func Aborted(msg string, err error) *Error {
	return &Error{Kind: KindAborted, Message: msg, Err: err}
}

// Unauthenticated builds a credential-resolution failure.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Upstream wraps a generation-service failure.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// Internalf wraps an unexpected failure with a formatted message.
func Internalf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}
