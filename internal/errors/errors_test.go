package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	err := NewAPIError("anthropic", 403, "forbidden")
	assert.Contains(t, err.Error(), "anthropic")
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "forbidden")
}

func TestAPIError_WithWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	err := &APIError{Service: "anthropic", StatusCode: 500, Message: "fail", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewAPIError("llm", 429, "rate limit")))
	assert.True(t, IsRetryable(NewAPIError("llm", 529, "overloaded")))
	assert.True(t, IsRetryable(NewAPIError("llm", 503, "unavailable")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrTimeout)))
	assert.True(t, IsRetryable(ErrRateLimit))

	assert.False(t, IsRetryable(NewAPIError("llm", 401, "unauth")))
	assert.False(t, IsRetryable(NewAPIError("llm", 400, "bad request")))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(context.Canceled))
}

func TestActionError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("edit: %w", SectionNotFound("no section with id %q", "s9"))
	assert.ErrorIs(t, err, SectionNotFound(""))
	assert.NotErrorIs(t, err, InvalidOrder(""))
	assert.Equal(t, CodeSectionNotFound, CodeOf(err))
	assert.Contains(t, err.Error(), `SectionNotFound: no section with id "s9"`)
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(nil))
}
