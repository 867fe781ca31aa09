package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse-backend/domain/core/valueobjects"
	pkgerrors "campuspulse-backend/pkg/errors"
)

func TestNewPostDraft_EnforcesConfiguredMaxLength(t *testing.T) {
	_, err := NewPostDraft("user1", strings.Repeat("x", 141), valueobjects.CategoryGeneral, false, 140)
	assert.True(t, pkgerrors.IsValidation(err))

	draft, err := NewPostDraft("user1", strings.Repeat("x", 140), valueobjects.CategoryGeneral, false, 140)
	require.NoError(t, err)
	assert.Len(t, draft.Text, 140)

	// Zero means unbounded.
	_, err = NewPostDraft("user1", strings.Repeat("x", 5000), valueobjects.CategoryGeneral, false, 0)
	assert.NoError(t, err)
}

func TestNewPostDraft_RejectsEmptyFields(t *testing.T) {
	_, err := NewPostDraft("", "hello", valueobjects.CategoryGeneral, false, 2000)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewPostDraft("user1", "", valueobjects.CategoryGeneral, false, 2000)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewPostDraft_NormalizesCategory(t *testing.T) {
	draft, err := NewPostDraft("user1", "hello", valueobjects.Category("memes"), false, 2000)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.CategoryGeneral, draft.Category)
}

func TestNewReplyDraft_EnforcesConfiguredMaxLength(t *testing.T) {
	_, err := NewReplyDraft("p1", "user1", strings.Repeat("x", 81), false, 80)
	assert.True(t, pkgerrors.IsValidation(err))

	draft, err := NewReplyDraft("p1", "user1", strings.Repeat("x", 80), false, 80)
	require.NoError(t, err)
	assert.Len(t, draft.Text, 80)
}
