package errors_test

import (
	"fmt"
	"testing"

	circleerrors "github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, circleerrors.Wrapf(nil, "refresh %s", "tokens"))
	})

	t.Run("wraps with context", func(t *testing.T) {
		err := circleerrors.Wrapf(circleerrors.ErrSessionExpired, "GET %s", "/auth/me/")
		require.EqualError(t, err, "GET /auth/me/: session expired")
		require.True(t, circleerrors.Is(err, circleerrors.ErrSessionExpired))
	})

	t.Run("As finds typed errors", func(t *testing.T) {
		type statusErr struct{ error }
		err := fmt.Errorf("outer: %w", statusErr{circleerrors.ErrNetwork})
		var target statusErr
		require.True(t, circleerrors.As(err, &target))
		require.Equal(t, circleerrors.ErrNetwork, target.error)
	})
}
