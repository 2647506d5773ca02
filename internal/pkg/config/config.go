package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`
	AdminAddr  string `env:"ADMIN_ADDR" envDefault:":9091"`

	PostgresURL string `env:"POSTGRES_URL,required"`

	// RedisAddr is optional; when empty the merged-listing cache is disabled.
	RedisAddr     string        `env:"REDIS_ADDR"`
	UnionCacheTTL time.Duration `env:"UNION_CACHE_TTL" envDefault:"30s"`

	// KafkaBrokers is optional; when empty audit events go to the log.
	KafkaBrokers    string `env:"KAFKA_BROKERS"`
	KafkaAuditTopic string `env:"KAFKA_AUDIT_TOPIC" envDefault:"erp.categories.audit"`

	JWTSecret        string        `env:"JWT_SECRET,required"`
	JWTExpiry        time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	LoginMaxFailures int           `env:"LOGIN_MAX_FAILURES" envDefault:"5"`
	LoginLockWindow  time.Duration `env:"LOGIN_LOCK_WINDOW" envDefault:"15m"`

	TenantRatePerSec float64 `env:"TENANT_RATE_PER_SEC" envDefault:"50"`
	TenantRateBurst  int     `env:"TENANT_RATE_BURST" envDefault:"100"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
