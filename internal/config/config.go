package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"ledger"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"b2b_user"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"b2b_db"`
	}

	Pool struct {
		MinConns         int32         `envconfig:"DB_MIN_CONN" default:"10"`
		MaxConns         int32         `envconfig:"DB_MAX_CONN" default:"50"`
		AcquireTimeout   time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"5s"`
		StatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT" default:"10s"`
	}

	Cache struct {
		Enabled bool          `envconfig:"REDIS_ENABLED" default:"false"`
		Addr    string        `envconfig:"REDIS_ADDR" default:"redis:6379"`
		DB      int           `envconfig:"REDIS_DB" default:"0"`
		TTL     time.Duration `envconfig:"STATS_CACHE_TTL" default:"300s"`
	}

	Kafka struct {
		Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
		Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Pool.MinConns > cfg.Pool.MaxConns {
		return nil, fmt.Errorf("pool min connections (%d) exceeds max (%d)",
			cfg.Pool.MinConns, cfg.Pool.MaxConns)
	}

	return &cfg, nil
}
