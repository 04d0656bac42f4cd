package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrRetrieval, cause, "failed to query vector store")

	assert.True(t, HasCode(err, ErrRetrieval))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsSeesThroughWrapping(t *testing.T) {
	sentinel := fmt.Errorf("record not found")
	wrapped := fmt.Errorf("query failed: %w", sentinel)

	// 哨兵错误被包装后仍可比对，等值判断会漏掉
	assert.True(t, Is(wrapped, sentinel))
	assert.False(t, Is(wrapped, fmt.Errorf("other")))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrSchema, CodeOf(New(ErrSchema, "bad document")))
	// 非业务错误归为内部错误
	assert.Equal(t, ErrInternalError, CodeOf(fmt.Errorf("plain error")))
}

func TestCodeOfWrappedChain(t *testing.T) {
	inner := New(ErrDimensionMismatch, "dim mismatch")
	outer := fmt.Errorf("ingest failed: %w", inner)
	assert.Equal(t, ErrDimensionMismatch, CodeOf(outer))
	assert.True(t, HasCode(outer, ErrDimensionMismatch))
}

func TestErrCodeString(t *testing.T) {
	assert.Equal(t, "SchemaError", ErrSchema.String())
	assert.Equal(t, "DimensionMismatchError", ErrDimensionMismatch.String())
	assert.Equal(t, "RetrievalError", ErrRetrieval.String())
	assert.Equal(t, "ProviderError", ErrLLMCallFailed.String())
	assert.Equal(t, "ConfigError", ErrInvalidConfig.String())
	assert.Equal(t, "InternalError", ErrInternalError.String())
}

func TestHTTPStatusCode(t *testing.T) {
	assert.Equal(t, 400, ErrInvalidParameter.HTTPStatusCode())
	assert.Equal(t, 400, ErrSchema.HTTPStatusCode())
	assert.Equal(t, 404, ErrNotFound.HTTPStatusCode())
	assert.Equal(t, 500, ErrRetrieval.HTTPStatusCode())
}
