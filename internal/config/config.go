// Package config loads the leadbot TOML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":8080"
	DefaultTenantsPath     = "tenants.json"
	DefaultPGHost          = "127.0.0.1"
	DefaultPGPort          = 5432
	DefaultPGUser          = "postgres"
	DefaultPGDatabase      = "leadbot"
	DefaultPGSSLMode       = "disable"
	DefaultGraphBaseURL    = "https://graph.facebook.com/v24.0"
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultDedupeCapacity  = 10000
	DefaultDedupeWindow    = "24h"
	DefaultPruneSchedule   = "0 * * * *"
	DefaultPruneIdleFor    = "720h"
	DefaultCompleteTimeout = 30
	DefaultDispatchTimeout = 15
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Postgres PostgresConfig `toml:"postgres"`
	Tenants  TenantsConfig  `toml:"tenants"`
	WhatsApp WhatsAppConfig `toml:"whatsapp"`
	OpenAI   OpenAIConfig   `toml:"openai"`
	Dedupe   DedupeConfig   `toml:"dedupe"`
	Prune    PruneConfig    `toml:"prune"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// DSN renders the pgx connection string for this Postgres config.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type TenantsConfig struct {
	Path string `toml:"path"`
}

type WhatsAppConfig struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	VerifyToken    string `toml:"verify_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type OpenAIConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type DedupeConfig struct {
	Capacity int    `toml:"capacity"`
	Window   string `toml:"window"`
}

type PruneConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"`
	IdleFor  string `toml:"idle_for"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Tenants: TenantsConfig{
			Path: DefaultTenantsPath,
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:        DefaultGraphBaseURL,
			TimeoutSeconds: DefaultDispatchTimeout,
		},
		OpenAI: OpenAIConfig{
			BaseURL:        DefaultOpenAIBaseURL,
			TimeoutSeconds: DefaultCompleteTimeout,
		},
		Dedupe: DedupeConfig{
			Capacity: DefaultDedupeCapacity,
			Window:   DefaultDedupeWindow,
		},
		Prune: PruneConfig{
			Schedule: DefaultPruneSchedule,
			IdleFor:  DefaultPruneIdleFor,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
