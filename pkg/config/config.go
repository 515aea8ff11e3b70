// Copyright 2024-2026 Aiku AI

// Package config loads the bridge configuration from an optional YAML
// file with environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/aiku/anonbridge/pkg/profile"
)

type DiscordConfig struct {
	Token          string        `yaml:"token" env:"DISCORD_BOT_TOKEN"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"DISCORD_REQUEST_TIMEOUT"`
}

type DatabaseConfig struct {
	// Type is a dbutil pool type: sqlite3-fk-wal or postgres.
	Type string `yaml:"type" env:"DATABASE_TYPE"`
	URI  string `yaml:"uri" env:"DATABASE_URL"`
}

type BridgeConfig struct {
	RoutesEnabled     bool   `yaml:"routes_enabled" env:"BRIDGE_ROUTES_ENABLED"`
	Routes            string `yaml:"routes" env:"BRIDGE_ROUTES"`
	RequireReciprocal bool   `yaml:"require_reciprocal" env:"BRIDGE_ROUTES_REQUIRE_RECIPROCAL"`
	Strict            bool   `yaml:"strict" env:"BRIDGE_ROUTES_STRICT"`

	AvatarBaseURL string `yaml:"avatar_base_url" env:"BRIDGE_AVATAR_BASE_URL"`
	DataDir       string `yaml:"data_dir" env:"BRIDGE_DATA_DIR"`

	// RetentionMaxAge prunes message links older than this age. Zero
	// disables pruning.
	RetentionMaxAge time.Duration `yaml:"retention_max_age" env:"BRIDGE_RETENTION_MAX_AGE"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Database DatabaseConfig `yaml:"database"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Logging  LoggingConfig  `yaml:"logging"`
}

func Default() *Config {
	return &Config{
		Discord: DiscordConfig{
			RequestTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Type: "sqlite3-fk-wal",
			URI:  "file:anonbridge.db?_txlock=immediate",
		},
		Bridge: BridgeConfig{
			AvatarBaseURL: profile.DefaultAvatarBaseURL,
			DataDir:       ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path (when it exists) on top of the defaults, then applies
// environment overrides. A missing file is not an error so env-only
// deployments work without one.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord token is not set (DISCORD_BOT_TOKEN)")
	}
	switch c.Database.Type {
	case "sqlite3-fk-wal", "postgres":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Database.URI == "" {
		return fmt.Errorf("database URI is not set (DATABASE_URL)")
	}
	if c.Bridge.RetentionMaxAge < 0 {
		return fmt.Errorf("retention max age must not be negative")
	}
	return nil
}
