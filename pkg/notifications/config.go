package notifications

import "time"

// Store drivers accepted by Config.StoreDriver.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

// Config holds the access-layer and retention settings.
type Config struct {
	PageSize        int           `env:"NOTIFICATIONS_PAGE_SIZE" envDefault:"20"`
	RetentionDays   int           `env:"NOTIFICATIONS_RETENTION_DAYS" envDefault:"30"`
	AdminRole       string        `env:"NOTIFICATIONS_ADMIN_ROLE" envDefault:"admin"`
	StoreDriver     string        `env:"NOTIFICATIONS_STORE" envDefault:"postgres"`
	CleanupInterval time.Duration `env:"NOTIFICATIONS_CLEANUP_INTERVAL" envDefault:"24h"`
}
