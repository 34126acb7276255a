// Package errors provides structured error types for the site agent.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for failures that cross a component boundary.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrTimeout        = errors.New("operation timed out")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrUnavailable    = errors.New("service unavailable")
	ErrTransport      = errors.New("ai transport failure")
	ErrStepIncomplete = errors.New("onboarding step incomplete")
	ErrInvalidStep    = errors.New("invalid onboarding step")
)

// Code identifies a per-action failure. Codes are recorded on action
// outcomes and never returned from the executor.
type Code string

const (
	CodeInvalidSectionType Code = "InvalidSectionType"
	CodeSectionNotFound    Code = "SectionNotFound"
	CodeInvalidOrder       Code = "InvalidOrder"
	CodeMalformedAction    Code = "MalformedAction"
	CodeValidationFailed   Code = "ValidationFailed"
)

// ActionError is a local failure of a single action.
type ActionError struct {
	Code    Code
	Message string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any ActionError carrying the same code, so callers can write
// errors.Is(err, errors.SectionNotFound("")).
func (e *ActionError) Is(target error) bool {
	var t *ActionError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func newActionError(code Code, format string, args ...any) *ActionError {
	return &ActionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func InvalidSectionType(format string, args ...any) *ActionError {
	return newActionError(CodeInvalidSectionType, format, args...)
}

func SectionNotFound(format string, args ...any) *ActionError {
	return newActionError(CodeSectionNotFound, format, args...)
}

func InvalidOrder(format string, args ...any) *ActionError {
	return newActionError(CodeInvalidOrder, format, args...)
}

func MalformedAction(format string, args ...any) *ActionError {
	return newActionError(CodeMalformedAction, format, args...)
}

func ValidationFailed(format string, args ...any) *ActionError {
	return newActionError(CodeValidationFailed, format, args...)
}

// CodeOf returns the action error code carried by err, or "" if err is not
// an ActionError.
func CodeOf(err error) Code {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// APIError represents an error from an external API call.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s API error (status %d): %s: %v", e.Service, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// NewAPIError creates a new API error.
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{Service: service, StatusCode: statusCode, Message: message}
}

// IsRetryable returns true if the error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504, 529:
			return true
		}
	}
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimit) || errors.Is(err, ErrUnavailable)
}

// Is, As and New re-export the standard library helpers so callers that
// import this package under the name "errors" keep access to them.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)
