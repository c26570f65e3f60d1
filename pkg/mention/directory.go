package mention

import (
	"context"

	"github.com/dmitrymomot/campusnotify/pkg/cache"
)

// Directory resolves case-folded usernames to user ids in one round trip.
// Usernames that do not exist are simply absent from the returned map.
type Directory interface {
	ResolveUsernames(ctx context.Context, usernames []string) (map[string]string, error)
}

// DirectoryFunc adapts a function to the Directory interface.
type DirectoryFunc func(ctx context.Context, usernames []string) (map[string]string, error)

func (f DirectoryFunc) ResolveUsernames(ctx context.Context, usernames []string) (map[string]string, error) {
	return f(ctx, usernames)
}

// CachedDirectory remembers successful resolutions in an LRU cache. Misses
// (unknown usernames) are not cached, so a user registered a moment ago can be
// mentioned right away.
type CachedDirectory struct {
	next  Directory
	cache *cache.LRU[string, string]
}

// NewCachedDirectory wraps next with the given cache.
func NewCachedDirectory(next Directory, c *cache.LRU[string, string]) *CachedDirectory {
	return &CachedDirectory{next: next, cache: c}
}

func (d *CachedDirectory) ResolveUsernames(ctx context.Context, usernames []string) (map[string]string, error) {
	hits, misses := d.cache.GetMany(usernames)
	if len(misses) == 0 {
		return hits, nil
	}

	resolved, err := d.next.ResolveUsernames(ctx, misses)
	if err != nil {
		return nil, err
	}
	for name, id := range resolved {
		d.cache.Put(name, id)
		hits[name] = id
	}
	return hits, nil
}
