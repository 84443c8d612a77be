// Package config loads server settings from an optional YAML file and the
// MCP_XAI_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds runtime settings
type Config struct {
	// ServerName is reported in the initialize handshake
	ServerName string `yaml:"server_name"`
	// CatalogPath replaces the embedded catalog when set
	CatalogPath string `yaml:"catalog_path"`
	LogLevel    string `yaml:"log_level"`
	// AuditDB is a SQLite file recording every tools/call; empty disables auditing
	AuditDB string `yaml:"audit_db"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		ServerName: "mcp-xai",
		LogLevel:   "info",
	}
}

// Load reads path (if not empty) over the defaults, then applies env overrides
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg = MergeWithEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MergeWithEnv applies environment overrides. ENV vars take precedence over
// config file values:
// MCP_XAI_SERVER_NAME, MCP_XAI_CATALOG_PATH, MCP_XAI_LOG_LEVEL, MCP_XAI_AUDIT_DB
func MergeWithEnv(cfg Config) Config {
	if v := os.Getenv("MCP_XAI_SERVER_NAME"); v != "" {
		cfg.ServerName = v
	}
	if v := os.Getenv("MCP_XAI_CATALOG_PATH"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("MCP_XAI_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MCP_XAI_AUDIT_DB"); v != "" {
		cfg.AuditDB = v
	}
	return cfg
}

// Validate checks that the settings are usable
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServerName) == "" {
		return fmt.Errorf("config: server_name must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel; empty means info
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("config: invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
