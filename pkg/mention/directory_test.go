package mention_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/cache"
	"github.com/dmitrymomot/campusnotify/pkg/mention"
)

func TestCachedDirectory(t *testing.T) {
	t.Parallel()

	dir := newDirectory()
	cached := mention.NewCachedDirectory(dir, cache.NewLRU[string, string](16))

	got, err := cached.ResolveUsernames(context.Background(), []string{"alice", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "u-alice"}, got)

	got, err = cached.ResolveUsernames(context.Background(), []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "u-alice", "bob": "u-bob"}, got)

	require.Len(t, dir.calls, 2)
	assert.Equal(t, []string{"bob"}, dir.calls[1], "cached username must not be looked up again")

	_, err = cached.ResolveUsernames(context.Background(), []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Len(t, dir.calls, 2)
}

func TestDirectoryFunc(t *testing.T) {
	t.Parallel()

	fn := mention.DirectoryFunc(func(_ context.Context, names []string) (map[string]string, error) {
		return map[string]string{names[0]: "id"}, nil
	})
	got, err := fn.ResolveUsernames(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, "id", got["x"])
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	_, err := mention.NewFromConfig(nil, mention.Config{})
	assert.ErrorIs(t, err, mention.ErrDirectoryNil)

	tests := []struct {
		name      string
		cfg       mention.Config
		wantCalls int
	}{
		{"cached", mention.Config{CacheSize: 8, CacheTTL: time.Minute}, 1},
		{"uncached", mention.Config{}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := newDirectory()
			ex, err := mention.NewFromConfig(dir, tt.cfg)
			require.NoError(t, err)

			for range 2 {
				ids, err := ex.Extract(context.Background(), "ping @Alice", "u-bob")
				require.NoError(t, err)
				assert.Equal(t, []string{"u-alice"}, ids)
			}
			assert.Len(t, dir.calls, tt.wantCalls)
		})
	}
}
