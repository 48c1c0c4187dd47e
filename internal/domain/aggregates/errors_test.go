package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCodeSurvivesWrapping(t *testing.T) {
	base := NewError(CodeForbidden, "Session.Get", "not your session", nil)
	wrapped := fmt.Errorf("load: %w", base)

	require.True(t, IsCode(wrapped, CodeForbidden))
	require.Equal(t, CodeForbidden, CodeOf(wrapped))
	require.False(t, Retryable(wrapped))
	require.Equal(t, "Session.Get: not your session (forbidden)", base.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeRetryable, "op", cause)
	require.True(t, errors.Is(err, cause))
	require.True(t, Retryable(err))
	require.Nil(t, Wrap(CodeInternal, "op", nil))
	require.Equal(t, ErrorCode(""), CodeOf(cause))
}
