package queue_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/queue"
)

func TestRecipientTimestampKey(t *testing.T) {
	t.Parallel()

	at := time.UnixMilli(1700000000123)
	msg := queue.Message{RecipientID: "user-1", Payload: testPayload{}}

	t.Run("embeds recipient and timestamp", func(t *testing.T) {
		t.Parallel()

		id, err := queue.RecipientTimestampKey{}.Key(msg, []byte(`{}`), at)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "user-1:1700000000123:"))
	})

	t.Run("same millisecond yields distinct ids", func(t *testing.T) {
		t.Parallel()

		a, err := queue.RecipientTimestampKey{}.Key(msg, []byte(`{}`), at)
		require.NoError(t, err)
		b, err := queue.RecipientTimestampKey{}.Key(msg, []byte(`{}`), at)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("requires recipient", func(t *testing.T) {
		t.Parallel()

		_, err := queue.RecipientTimestampKey{}.Key(queue.Message{}, nil, at)
		assert.ErrorIs(t, err, queue.ErrRecipientRequired)
	})
}

func TestPayloadHashKey(t *testing.T) {
	t.Parallel()

	msg := queue.Message{Name: "deliver", Type: "MENTION", RecipientID: "user-1"}

	a, err := queue.PayloadHashKey{}.Key(msg, []byte(`{"a":1}`), time.Now())
	require.NoError(t, err)
	b, err := queue.PayloadHashKey{}.Key(msg, []byte(`{"a":1}`), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, a, b, "time must not influence the key")

	c, err := queue.PayloadHashKey{}.Key(msg, []byte(`{"a":2}`), time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	other := msg
	other.RecipientID = "user-2"
	d, err := queue.PayloadHashKey{}.Key(other, []byte(`{"a":1}`), time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}
