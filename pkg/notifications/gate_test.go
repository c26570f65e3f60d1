package notifications_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/campusnotify/pkg/notifications"
)

func TestPreferences_AllowsIsExhaustive(t *testing.T) {
	t.Parallel()

	for _, typ := range notifications.AllTypes {
		_, known := notifications.Preferences{}.Allows(typ)
		assert.True(t, known, "type %s has no preference mapping", typ)
		assert.True(t, typ.Valid())
	}

	_, known := notifications.Preferences{}.Allows(notifications.Type("DIGEST"))
	assert.False(t, known)
}

func TestShouldSend(t *testing.T) {
	t.Parallel()

	t.Run("missing preferences", func(t *testing.T) {
		t.Parallel()
		for _, typ := range notifications.AllTypes {
			assert.False(t, notifications.ShouldSend(typ, nil))
		}
	})

	t.Run("master switch off blocks everything", func(t *testing.T) {
		t.Parallel()
		p := notifications.DefaultPreferences("u")
		p.Enabled = false
		for _, typ := range notifications.AllTypes {
			assert.False(t, notifications.ShouldSend(typ, &p))
		}
	})

	t.Run("mirrors each flag when enabled", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			typ  notifications.Type
			flag func(*notifications.Preferences)
		}{
			{notifications.TypeComment, func(p *notifications.Preferences) { p.AllowComments = false }},
			{notifications.TypeMention, func(p *notifications.Preferences) { p.AllowMentions = false }},
			{notifications.TypePostUpdate, func(p *notifications.Preferences) { p.AllowProjectUpdates = false }},
			{notifications.TypeSystem, func(p *notifications.Preferences) { p.AllowSystem = false }},
		}
		is := assert.New(t)
		is.Len(tests, len(notifications.AllTypes))

		for _, tt := range tests {
			p := notifications.DefaultPreferences("u")
			is.True(notifications.ShouldSend(tt.typ, &p))

			tt.flag(&p)
			is.False(notifications.ShouldSend(tt.typ, &p), tt.typ)

			for _, other := range notifications.AllTypes {
				if other != tt.typ {
					is.True(notifications.ShouldSend(other, &p), "%s must not affect %s", tt.typ, other)
				}
			}
		}
	})

	t.Run("unknown type never sent", func(t *testing.T) {
		t.Parallel()
		p := notifications.DefaultPreferences("u")
		assert.False(t, notifications.ShouldSend(notifications.Type("DIGEST"), &p))
	})
}
