package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/queue"
)

func TestNewTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("named after payload type", func(t *testing.T) {
		t.Parallel()

		h := queue.NewTaskHandler(func(context.Context, testPayload) error { return nil })
		assert.Equal(t, "queue_test.testPayload", h.Name())

		hp := queue.NewTaskHandler(func(context.Context, *testPayload) error { return nil })
		assert.Equal(t, "queue_test.testPayload", hp.Name())
	})

	t.Run("decodes payload", func(t *testing.T) {
		t.Parallel()

		var got testPayload
		h := queue.NewTaskHandler(func(_ context.Context, p testPayload) error {
			got = p
			return nil
		})
		require.NoError(t, h.Handle(context.Background(), json.RawMessage(`{"message":"m","value":2}`)))
		assert.Equal(t, testPayload{Message: "m", Value: 2}, got)
	})

	t.Run("undecodable payload is permanent", func(t *testing.T) {
		t.Parallel()

		h := queue.NewTaskHandler(func(context.Context, testPayload) error { return nil })
		err := h.Handle(context.Background(), json.RawMessage(`{"value":"nope"}`))
		require.Error(t, err)
		assert.True(t, queue.IsPermanent(err))
	})

	t.Run("handler errors pass through", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		h := queue.NewNamedHandler("deliver", func(context.Context, testPayload) error { return boom })
		assert.Equal(t, "deliver", h.Name())
		err := h.Handle(context.Background(), json.RawMessage(`{}`))
		assert.ErrorIs(t, err, boom)
		assert.False(t, queue.IsPermanent(err))
	})
}

func TestPermanent(t *testing.T) {
	t.Parallel()

	assert.NoError(t, queue.Permanent(nil))

	cause := errors.New("bad")
	err := queue.Permanent(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad", err.Error())
	assert.True(t, queue.IsPermanent(err))
	assert.False(t, queue.IsPermanent(cause))
}
