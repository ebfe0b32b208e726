package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration: an optional YAML file at
// CONFIG_PATH, then environment variables on top.
type Config struct {
	Port                  string `yaml:"port"`
	DatabaseURL           string `yaml:"database_url"`
	StoreDriver           string `yaml:"store_driver"`
	SQLitePath            string `yaml:"sqlite_path"`
	BasePath              string `yaml:"base_path"`
	LeaderboardLimit      int    `yaml:"leaderboard_limit"`
	StreamIntervalSeconds int    `yaml:"stream_interval_seconds"`
	JournalDir            string `yaml:"journal_dir"`

	Features FeatureFlags `yaml:"features"`
}

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

func defaultConfig() Config {
	return Config{
		Port:                  "8080",
		SQLitePath:            "data/clicker.db",
		BasePath:              "/api/player",
		LeaderboardLimit:      10,
		StreamIntervalSeconds: 10,
		Features:              defaultFeatureFlags(),
	}
}

func loadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.StoreDriver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}
	if v := os.Getenv("BASE_PATH"); v != "" {
		cfg.BasePath = v
	}
	if v := os.Getenv("JOURNAL_DIR"); v != "" {
		cfg.JournalDir = v
	}
	cfg.LeaderboardLimit = parseEnvInt("LEADERBOARD_LIMIT", cfg.LeaderboardLimit)
	cfg.StreamIntervalSeconds = parseEnvInt("STREAM_INTERVAL_SECONDS", cfg.StreamIntervalSeconds)
	cfg.Features = loadFeatureFlags(cfg.Features)

	return cfg.normalized()
}

func (c Config) normalized() (Config, error) {
	d := defaultConfig()

	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if c.StoreDriver == "" {
		c.StoreDriver = driverSQLite
		if c.DatabaseURL != "" {
			c.StoreDriver = driverPostgres
		}
	}
	switch c.StoreDriver {
	case driverPostgres:
		if c.DatabaseURL == "" {
			return c, fmt.Errorf("DATABASE_URL is not set")
		}
	case driverSQLite:
		if c.SQLitePath == "" {
			c.SQLitePath = d.SQLitePath
		}
	default:
		return c, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	c.BasePath = "/" + strings.Trim(strings.TrimSpace(c.BasePath), "/")
	if c.BasePath == "/" {
		c.BasePath = d.BasePath
	}
	if c.Port == "" {
		c.Port = d.Port
	}
	if c.LeaderboardLimit <= 0 {
		c.LeaderboardLimit = d.LeaderboardLimit
	}
	if c.LeaderboardLimit > 100 {
		c.LeaderboardLimit = 100
	}
	if c.StreamIntervalSeconds <= 0 {
		c.StreamIntervalSeconds = d.StreamIntervalSeconds
	}
	return c, nil
}

func (c Config) StreamInterval() time.Duration {
	return time.Duration(c.StreamIntervalSeconds) * time.Second
}

func parseEnvInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, strconv.ErrSyntax
	}
}
