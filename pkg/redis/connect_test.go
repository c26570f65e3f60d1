package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/redis"
)

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  redis.Config
		want error
	}{
		{
			name: "empty url",
			cfg:  redis.Config{},
			want: redis.ErrEmptyConnectionURL,
		},
		{
			name: "unparsable url",
			cfg:  redis.Config{ConnectionURL: "mysql://localhost:3306"},
			want: redis.ErrFailedToParseRedisConnString,
		},
		{
			name: "unreachable server",
			cfg: redis.Config{
				ConnectionURL:  "redis://127.0.0.1:1/0",
				RetryAttempts:  2,
				RetryInterval:  10 * time.Millisecond,
				ConnectTimeout: time.Second,
			},
			want: redis.ErrRedisNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := redis.Connect(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, client)
		})
	}
}

func TestConnect_Server(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}

	ctx := context.Background()
	client, err := redis.Connect(ctx, redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  1,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	check := redis.Healthcheck(client)
	require.NoError(t, check(ctx))

	require.NoError(t, client.Close())
	assert.ErrorIs(t, check(ctx), redis.ErrHealthcheckFailed)
}
