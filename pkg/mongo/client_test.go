package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/mongo"
)

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	_, err := mongo.Connect(context.Background(), mongo.Config{})
	assert.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)

	_, err = mongo.ConnectDatabase(context.Background(), mongo.Config{ConnectionURL: "mongodb://localhost:27017"})
	assert.ErrorIs(t, err, mongo.ErrDatabaseRequired)
}

func TestConnect_Integration(t *testing.T) {
	t.Parallel()

	url := os.Getenv("TEST_MONGO_URL")
	if url == "" {
		t.Skip("TEST_MONGO_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, mongo.Config{ConnectionURL: url, RetryAttempts: 3, RetryInterval: time.Second})
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(context.Background()) }()

	assert.NoError(t, mongo.Healthcheck(client)(ctx))
}
