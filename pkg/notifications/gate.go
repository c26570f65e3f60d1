package notifications

// Allows maps a notification type to its allow flag. known is false for a
// type without a mapping; AllTypes must never contain one.
func (p Preferences) Allows(t Type) (allowed, known bool) {
	switch t {
	case TypeComment:
		return p.AllowComments, true
	case TypeMention:
		return p.AllowMentions, true
	case TypePostUpdate:
		return p.AllowProjectUpdates, true
	case TypeSystem:
		return p.AllowSystem, true
	}
	return false, false
}

// ShouldSend decides whether a notification of type t may be sent to the
// owner of prefs. Missing preferences and the master switch both block.
func ShouldSend(t Type, prefs *Preferences) bool {
	if prefs == nil || !prefs.Enabled {
		return false
	}
	allowed, known := prefs.Allows(t)
	return known && allowed
}
