package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
)

func TestKind_Exhaustive(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, k := range apperr.Kinds {
		name := k.String()
		require.NotEqual(t, "unknown", name, "kind %d has no name", k)
		assert.False(t, seen[name], "duplicate kind name %q", name)
		seen[name] = true
	}
	assert.Len(t, seen, 6)
}

func TestKind_HTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.AuthenticationRequired, http.StatusUnauthorized},
		{apperr.AuthorizationDenied, http.StatusForbidden},
		{apperr.NotFound, http.StatusNotFound},
		{apperr.ValidationFailed, http.StatusUnprocessableEntity},
		{apperr.QueueUnavailable, http.StatusServiceUnavailable},
		{apperr.OperationFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")

	t.Run("message includes op kind and cause", func(t *testing.T) {
		t.Parallel()

		err := apperr.New(apperr.QueueUnavailable, "queue.Enqueue", cause)
		assert.Equal(t, "queue.Enqueue: queue_unavailable: connection refused", err.Error())
	})

	t.Run("cause is reachable", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("dispatch: %w", apperr.New(apperr.OperationFailed, "op", cause))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("sentinel matches by kind", func(t *testing.T) {
		t.Parallel()

		err := apperr.New(apperr.NotFound, "notifications.Get", cause)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.NotErrorIs(t, err, apperr.ErrAuthorizationDenied)
	})

	t.Run("wrap keeps existing classification", func(t *testing.T) {
		t.Parallel()

		inner := apperr.New(apperr.NotFound, "inner", nil)
		err := apperr.Wrap(apperr.OperationFailed, "outer", fmt.Errorf("ctx: %w", inner))
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})

	t.Run("wrap nil", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, apperr.Wrap(apperr.OperationFailed, "op", nil))
	})

	t.Run("unclassified defaults to operation failed", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, apperr.OperationFailed, apperr.KindOf(cause))
		assert.False(t, apperr.IsKind(nil, apperr.OperationFailed))
	})
}
