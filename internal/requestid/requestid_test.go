package requestid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	ctx, id := New(context.Background())
	assert.NotEmpty(t, id)
	assert.Equal(t, id, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
}

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "test-123")
	assert.Equal(t, "test-123", FromContext(ctx))
}

func TestEnsure(t *testing.T) {
	const valid = "6f1c1c52-0b0e-4a38-9d7e-2b4d7c9a1e10"
	assert.Equal(t, valid, Ensure(valid))

	generated := Ensure("not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", generated)
	assert.Len(t, generated, 36)
	assert.Len(t, Ensure(""), 36)
}
