package mention_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
	"github.com/dmitrymomot/campusnotify/pkg/mention"
)

type stubDirectory struct {
	users map[string]string
	calls [][]string
	err   error
}

func (d *stubDirectory) ResolveUsernames(_ context.Context, names []string) (map[string]string, error) {
	d.calls = append(d.calls, names)
	if d.err != nil {
		return nil, d.err
	}
	out := make(map[string]string)
	for _, n := range names {
		if id, ok := d.users[n]; ok {
			out[n] = id
		}
	}
	return out, nil
}

func newDirectory() *stubDirectory {
	return &stubDirectory{users: map[string]string{
		"alice": "u-alice",
		"bob":   "u-bob",
		"carol": "u-carol",
		"dave":  "u-dave",
		"émile": "u-emile",
		"j.doe": "u-jdoe",
	}}
}

func TestExtractor_Usernames(t *testing.T) {
	t.Parallel()

	ex, err := mention.NewExtractor(newDirectory())
	require.NoError(t, err)

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "no mentions here", nil},
		{"single", "@alice hi", []string{"alice"}},
		{"dedup case-insensitive", "@Alice and @ALICE and @alice", []string{"alice"}},
		{"order of first appearance", "@bob then @alice then @bob", []string{"bob", "alice"}},
		{"punctuation trimmed", "thanks @alice, @bob. and @j.doe!", []string{"alice", "bob", "j.doe"}},
		{"email is not a mention", "mail me at carol@example.com", nil},
		{"bare at sign", "meet @ noon", nil},
		{"unicode", "merci @Émile", []string{"émile"}},
		{"start of line after newline", "line\n@dave", []string{"dave"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ex.Usernames(tt.content))
		})
	}
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("k distinct existing users yield k ids in order", func(t *testing.T) {
		t.Parallel()

		ex, err := mention.NewExtractor(newDirectory())
		require.NoError(t, err)

		ids, err := ex.Extract(context.Background(), "hey @alice and @bob, and @alice again", "u-carol")
		require.NoError(t, err)
		assert.Equal(t, []string{"u-alice", "u-bob"}, ids)
	})

	t.Run("author excluded on self mention", func(t *testing.T) {
		t.Parallel()

		ex, err := mention.NewExtractor(newDirectory())
		require.NoError(t, err)

		ids, err := ex.Extract(context.Background(), "@carol note to self, cc @dave", "u-carol")
		require.NoError(t, err)
		assert.Equal(t, []string{"u-dave"}, ids)
	})

	t.Run("unknown usernames dropped", func(t *testing.T) {
		t.Parallel()

		ex, err := mention.NewExtractor(newDirectory())
		require.NoError(t, err)

		ids, err := ex.Extract(context.Background(), "@ghost @alice @nobody", "u-carol")
		require.NoError(t, err)
		assert.Equal(t, []string{"u-alice"}, ids)
	})

	t.Run("single batched lookup", func(t *testing.T) {
		t.Parallel()

		dir := newDirectory()
		ex, err := mention.NewExtractor(dir)
		require.NoError(t, err)

		_, err = ex.Extract(context.Background(), "@alice @bob @dave", "u-carol")
		require.NoError(t, err)
		require.Len(t, dir.calls, 1)
		assert.Equal(t, []string{"alice", "bob", "dave"}, dir.calls[0])
	})

	t.Run("no tokens skips lookup", func(t *testing.T) {
		t.Parallel()

		dir := newDirectory()
		ex, err := mention.NewExtractor(dir)
		require.NoError(t, err)

		ids, err := ex.Extract(context.Background(), "plain text", "u-carol")
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.Empty(t, dir.calls)
	})

	t.Run("lookup failure is operation failed", func(t *testing.T) {
		t.Parallel()

		dir := newDirectory()
		dir.err = errors.New("db down")
		ex, err := mention.NewExtractor(dir)
		require.NoError(t, err)

		_, err = ex.Extract(context.Background(), "@alice", "u-carol")
		require.Error(t, err)
		assert.Equal(t, apperr.OperationFailed, apperr.KindOf(err))
		assert.ErrorIs(t, err, mention.ErrLookupFailed)
	})
}

func TestNewExtractor_NilDirectory(t *testing.T) {
	t.Parallel()

	ex, err := mention.NewExtractor(nil)
	assert.ErrorIs(t, err, mention.ErrDirectoryNil)
	assert.Nil(t, ex)
}
