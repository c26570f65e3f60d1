package mention

import (
	"time"

	"github.com/dmitrymomot/campusnotify/pkg/cache"
)

// Config controls the username cache in front of the Directory.
type Config struct {
	CacheSize int           `env:"MENTION_CACHE_SIZE" envDefault:"10000"` // 0 disables the cache
	CacheTTL  time.Duration `env:"MENTION_CACHE_TTL" envDefault:"5m"`
}

// NewFromConfig creates an Extractor over dir, cached according to cfg.
func NewFromConfig(dir Directory, cfg Config, opts ...Option) (*Extractor, error) {
	if dir == nil {
		return nil, ErrDirectoryNil
	}
	if cfg.CacheSize > 0 {
		dir = NewCachedDirectory(dir, cache.NewLRU[string, string](cfg.CacheSize, cache.WithTTL[string, string](cfg.CacheTTL)))
	}
	return NewExtractor(dir, opts...)
}
