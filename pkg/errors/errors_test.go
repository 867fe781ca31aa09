package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	cause := errors.New("connection reset")

	assert.True(t, IsTransient(NewNetworkError("list votes", cause)))
	assert.True(t, IsTransient(NewTimeoutError("list votes")))
	assert.True(t, IsTransient(NewUnavailableError("supabase")))

	assert.False(t, IsTransient(NewValidationError("bad input")))
	assert.False(t, IsTransient(NewNotFoundError("post")))
	assert.False(t, IsTransient(NewStoreError("update vote", cause)))
	assert.False(t, IsTransient(nil))
}

func TestGetAppError_UnwrapsThroughWrapping(t *testing.T) {
	appErr := NewNotFoundError("post")
	wrapped := fmt.Errorf("loading detail: %w", appErr)

	got := GetAppError(wrapped)

	require.NotNil(t, got)
	assert.Equal(t, ErrorTypeNotFound, got.Type)
	assert.True(t, IsNotFound(wrapped))
}

func TestGetAppError_PlainError(t *testing.T) {
	assert.Nil(t, GetAppError(errors.New("plain")))
}

func TestNewNetworkError_CarriesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewNetworkError("list votes", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "list votes")
}

func TestIsType(t *testing.T) {
	err := NewValidationError("nope")

	assert.True(t, IsValidation(err))
	assert.True(t, IsType(err, ErrorTypeValidation))
	assert.False(t, IsType(err, ErrorTypeNetwork))
}
