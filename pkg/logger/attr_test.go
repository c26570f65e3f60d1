package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("job", logger.JobID("j1"), logger.Attempt(2))
	require.Equal(t, "job", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "job_id", g[0].Key)
	assert.Equal(t, "attempt", g[1].Key)
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))
}

func TestEmptyAttrs(t *testing.T) {
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.True(t, logger.UserID("").Equal(slog.Attr{}))
	assert.True(t, logger.Requester("").Equal(slog.Attr{}))
}

func TestPipelineAttrs(t *testing.T) {
	tests := []struct {
		attr  slog.Attr
		key   string
		value any
	}{
		{logger.JobID("abc"), "job_id", "abc"},
		{logger.Recipient("u1"), "recipient_id", "u1"},
		{logger.NotificationType("MENTION"), "notification_type", "MENTION"},
		{logger.Outcome(logger.OutcomeExhausted), "outcome", "exhausted"},
		{logger.Attempt(3), "attempt", int64(3)},
		{logger.Queue("notifications"), "queue", "notifications"},
		{logger.Count(4), "count", int64(4)},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.value, tt.attr.Value.Any())
		})
	}
}
