package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session store backends selectable through SESSION_BACKEND.
const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Backend       BackendConfig
	Session       SessionConfig
	Notifications NotificationConfig

	Mongo  MongoConfig
	Redis  RedisConfig
	SQLite SQLiteConfig
}

// BackendConfig points the portal at the ERP REST API.
type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8000"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=15s"`
}

type SessionConfig struct {
	Store        string        `env:"SESSION_BACKEND, default=redis"`
	TTL          time.Duration `env:"SESSION_TTL,     default=168h"`
	CookieName   string        `env:"SESSION_COOKIE,  default=erp_session"`
	CookieSecure bool          `env:"COOKIE_SECURE,   default=false"`
}

type NotificationConfig struct {
	Interval              time.Duration `env:"NOTIFICATION_INTERVAL,   default=5m"`
	PendingOrderThreshold int           `env:"PENDING_ORDER_THRESHOLD, default=5"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=erp_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=portal.db"`
}

// LoadContext reads configuration with go-envconfig from lookuper, or from
// the process environment when lookuper is nil.
func LoadContext(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case BackendRedis, BackendMongo, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.Session.Store)
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.Notifications.Interval <= 0 {
		return fmt.Errorf("NOTIFICATION_INTERVAL must be positive")
	}
	return nil
}
