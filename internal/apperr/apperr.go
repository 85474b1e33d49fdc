// Package apperr defines the error taxonomy shared by the lifecycle manager,
// the identity provider and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindInvalidOperation Kind = "invalid_operation"
	KindUnauthenticated  Kind = "unauthenticated"
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindTooManyRequests  Kind = "too_many_requests"
	KindInternal         Kind = "internal"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeInvalidCredentials  Code = "INVALID_CREDENTIALS"
	CodeForbidden           Code = "FORBIDDEN"
	CodeGameNotFound        Code = "GAME_NOT_FOUND"
	CodeParticipantNotFound Code = "PARTICIPANT_NOT_FOUND"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeRouteNotFound       Code = "ROUTE_NOT_FOUND"
	CodeCannotJoinOwnGame   Code = "CANNOT_JOIN_OWN_GAME"
	CodeGameNotJoinable     Code = "GAME_NOT_JOINABLE"
	CodeDuplicateJoin       Code = "DUPLICATE_JOIN_REQUEST"
	CodeGameFull            Code = "GAME_FULL"
	CodeGameClosed          Code = "GAME_CLOSED"
	CodeCapacityBelowRoster Code = "CAPACITY_BELOW_ROSTER"
	CodeEmailTaken          Code = "EMAIL_TAKEN"
	CodeRequestInFlight     Code = "REQUEST_IN_FLIGHT"
	CodeInternal            Code = "INTERNAL"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	// Field names the offending input for validation errors.
	Field string
	// Details carries machine-readable context for the caller.
	Details map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus maps the error kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidOperation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func WithDetails(kind Kind, code Code, message string, details map[string]string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Details: details}
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidInput, Message: message, Field: field}
}

func NotFound(code Code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, CodeForbidden, message)
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, CodeUnauthenticated, message)
}

func Conflict(code Code, message string, details map[string]string) *Error {
	return WithDetails(KindConflict, code, message, details)
}

// Internal wraps an unexpected failure. The message is safe to show callers.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Cause: cause}
}

// From extracts an *Error from err, wrapping anything else as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error", err)
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	return From(err).Kind
}
