package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Supported values of STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port            int    `envconfig:"PORT" default:"8080"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string `envconfig:"LOG_FORMAT" default:"json"`
	Version         string `envconfig:"VERSION" default:"dev"`
	StoreDriver     string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DBMaxConns      int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	SQLitePath      string `envconfig:"SQLITE_PATH" default:"./data/blueprints.db"`
	BootstrapSchema bool   `envconfig:"BOOTSTRAP_SCHEMA" default:"true"`
	Filter          string `envconfig:"BLUEPRINT_FILTER" default:"identity"`
	BulkConcurrency int    `envconfig:"BULK_CONCURRENCY" default:"8"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is %q", DriverPostgres)
		}
		if c.DBMaxConns < 1 {
			return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is %q", DriverSQLite)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want %q or %q)", c.StoreDriver, DriverPostgres, DriverSQLite)
	}

	if c.BulkConcurrency < 1 {
		return fmt.Errorf("BULK_CONCURRENCY must be positive, got %d", c.BulkConcurrency)
	}
	return nil
}
