package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the optional YAML configuration file.
const ConfigPathEnv = "PUNCHLIST_CONFIG_PATH"

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"PUNCHLIST_SERVER_HOST"`
	Port int    `yaml:"port" env:"PUNCHLIST_SERVER_PORT"`
	// AuthToken, when set, is required as a bearer token on /mcp.
	AuthToken string `yaml:"auth_token" env:"PUNCHLIST_AUTH_TOKEN"`
}

type DBConfig struct {
	Path string `yaml:"path" env:"PUNCHLIST_DB_PATH"`
	// Ephemeral keeps all state in memory and skips the database entirely.
	Ephemeral bool `yaml:"ephemeral" env:"PUNCHLIST_EPHEMERAL"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"PUNCHLIST_LOG_LEVEL"`
	Path  string `yaml:"path" env:"PUNCHLIST_LOG_PATH"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" env:"PUNCHLIST_TRANSPORT"`
}

type CatalogConfig struct {
	// Path replaces the embedded catalog dataset when set.
	Path string `yaml:"path" env:"PUNCHLIST_CATALOG_PATH"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "punchlist.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: TransportStdio,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
// Environment values win over the file, which wins over the defaults.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("invalid transport mode %q: want stdio or http", c.Transport.Mode)
	}
	if c.Transport.Mode == TransportHTTP && (c.Server.Port < 1 || c.Server.Port > 65535) {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if !c.DB.Ephemeral && c.DB.Path == "" {
		return errors.New("db path is required unless ephemeral")
	}
	return nil
}
