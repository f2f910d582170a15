package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error codes shared by handlers, the backend client and the embedded backend.
const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUpstream            = "UPSTREAM_ERROR"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeTimeout             = "TIMEOUT"
	CodeInternal            = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusUnprocessableEntity, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewTooManyRequests(message string) error {
	return NewDomainError(CodeRateLimited, message, http.StatusTooManyRequests, nil)
}

// NewUpstreamError maps a non-2xx response of the staff API onto a DomainError,
// keeping the server-provided message.
func NewUpstreamError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = "backend request failed"
	}
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return NewDomainError(CodeValidation, message, status, nil)
	case http.StatusUnauthorized:
		return NewUnauthorized(message)
	case http.StatusForbidden:
		return NewForbidden(message)
	case http.StatusNotFound:
		return NewDomainError(CodeNotFound, message, http.StatusNotFound, nil)
	case http.StatusConflict:
		return NewConflict(message, nil)
	case http.StatusTooManyRequests:
		return NewTooManyRequests(message)
	default:
		return &DomainError{
			Code:       CodeUpstream,
			Message:    message,
			HTTPStatus: http.StatusBadGateway,
			Details:    map[string]any{"upstream_status": status},
		}
	}
}

// NewUpstreamUnavailable wraps transport failures talking to the staff API.
func NewUpstreamUnavailable(err error) error {
	return &DomainError{
		Code:       CodeUpstreamUnavailable,
		Message:    "backend unavailable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped := fromPgError(pgErr); mapped != nil {
			return mapped
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &DomainError{
			Code:       CodeTimeout,
			Message:    "request timed out",
			HTTPStatus: http.StatusGatewayTimeout,
			Err:        err,
		}
	}
	return NewInternalError(err).(*DomainError)
}

func fromPgError(pgErr *pgconn.PgError) *DomainError {
	var mapped *DomainError
	switch pgErr.Code {
	case "22P02": // invalid_text_representation, e.g. a malformed uuid id
		mapped = NewNotFound("resource", nil).(*DomainError)
	case "23505": // unique_violation
		mapped = NewConflict("resource already exists", map[string]any{"constraint": pgErr.ConstraintName}).(*DomainError)
	case "23503": // foreign_key_violation
		mapped = NewValidationError("referenced resource not found", map[string]any{"constraint": pgErr.ConstraintName}).(*DomainError)
	default:
		return nil
	}
	mapped.Err = pgErr
	return mapped
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
