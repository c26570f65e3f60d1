// Package cache provides a generic, thread-safe LRU cache with optional
// per-entry expiry.
//
// The mention extractor uses it to remember username to user-id resolutions
// so that a burst of comments mentioning the same people does not hit the
// user directory for every comment. Entries expire after the configured TTL
// because usernames can be renamed or released.
//
//	c := cache.NewLRU[string, string](1024, cache.WithTTL[string, string](5*time.Minute))
//	c.Put("alice", "u-1")
//	id, ok := c.Get("alice")
package cache
