// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer maps them to
// status codes and the uniform failure body.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindValidation indicates invalid input data.
	KindValidation
	// KindConflict indicates a conflict with existing state (e.g., duplicate).
	KindConflict
	// KindForbidden indicates the action is not allowed for the user.
	KindForbidden
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
	// KindMethodNotAllowed indicates the HTTP method is not supported.
	KindMethodNotAllowed
)

// Code is the machine-readable failure code sent to callers.
type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeDuplicateEmail      Code = "DUPLICATE_EMAIL"
	CodeRegistrationFailed  Code = "REGISTRATION_FAILED"
	CodeServerMisconfigured Code = "SERVER_MISCONFIGURED"
	CodeInvalidJSON         Code = "INVALID_JSON"
	CodeInternal            Code = "INTERNAL_ERROR"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeNotFound            Code = "NOT_FOUND"
	CodeBadRequest          Code = "BAD_REQUEST"
	CodeMethodNotAllowed    Code = "METHOD_NOT_ALLOWED"
	CodeRateLimited         Code = "RATE_LIMITED"
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind            Kind
	Code            Code
	Message         string
	Op              string      // Operation that failed (optional)
	Err             error       // Underlying error (optional)
	Details         interface{} // Additional details for response (optional)
	SuggestedAction string      // Hint for the caller (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInternal:
		return http.StatusInternalServerError
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Code: defaultCode(kind), Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Code: defaultCode(kind), Message: message, Err: err}
}

// WithOp sets the operation on the error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails sets additional details on the error.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// WithCode overrides the machine-readable code.
func (e *Error) WithCode(code Code) *Error {
	e.Code = code
	return e
}

// WithSuggestedAction attaches a caller-facing hint.
func (e *Error) WithSuggestedAction(action string) *Error {
	e.SuggestedAction = action
	return e
}

func defaultCode(kind Kind) Code {
	switch kind {
	case KindNotFound:
		return CodeNotFound
	case KindValidation:
		return CodeValidation
	case KindUnauthorized, KindForbidden:
		return CodeUnauthorized
	case KindInternal:
		return CodeInternal
	case KindMethodNotAllowed:
		return CodeMethodNotAllowed
	default:
		return CodeBadRequest
	}
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict creates a conflict error (e.g., duplicate resource).
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error is not an *Error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
