package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds environment-driven settings shared by all commands.
// Flags override the corresponding fields after parsing.
type Config struct {
	// RedisAddr is the address of the Redis server backing --store redis.
	RedisAddr string `env:"RECALL_REDIS_ADDR" envDefault:"localhost:6379"`

	// RedisDB selects the Redis logical database.
	RedisDB int `env:"RECALL_REDIS_DB" envDefault:"0"`

	// SQLitePath is the database file backing --store sqlite.
	SQLitePath string `env:"RECALL_SQLITE_PATH" envDefault:"recall.db"`

	// OTELEndpoint enables OTLP/HTTP trace export when set.
	OTELEndpoint string `env:"RECALL_OTEL_ENDPOINT"`

	// OTELEnabled gates tracing even when an endpoint is configured.
	OTELEnabled bool `env:"RECALL_OTEL_ENABLED" envDefault:"true"`
}

// LoadConfig parses configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
