// Package mention extracts @username mentions from comment text and resolves
// them to user ids.
//
// Tokens are an '@' at the start of the text or after a non-word character,
// followed by one or more word characters (letters, digits, '_', '.', '-';
// trailing '.' and '-' are trimmed). Usernames are matched case-insensitively:
// every candidate is Unicode case-folded before it is sent to the Directory,
// so the directory must compare against folded usernames as well.
//
// Unknown usernames are dropped silently. The author is never part of the
// result, even when they mention themselves.
//
// NewFromConfig puts an LRU cache (MENTION_CACHE_SIZE, MENTION_CACHE_TTL) in
// front of the directory. Unknown usernames are not cached, so a freshly registered user
// resolves on the next comment.
package mention
