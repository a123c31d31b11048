// Package config loads block-manager configuration from a TOML file with
// environment overrides.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/klauern/block-manager/internal/constants"
)

// Config is the root configuration.
type Config struct {
	Server       ServerConfig    `toml:"server"`
	Store        StoreConfig     `toml:"store"`
	Registry     RegistryConfig  `toml:"registry"`
	Hierarchy    HierarchyConfig `toml:"hierarchy"`
	Auth         AuthConfig      `toml:"auth"`
	Log          LogConfig       `toml:"log"`
	ContentTypes []string        `toml:"content_types"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Listen          string        `toml:"listen"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
}

// StoreConfig selects the option store.
type StoreConfig struct {
	// DSN is memory://, file://path, sqlite://path or bolt://path.
	DSN string `toml:"dsn"`
}

// RegistryConfig points at the block catalog. An empty file uses the built-in catalog.
type RegistryConfig struct {
	CatalogFile string `toml:"catalog_file"`
}

// HierarchyConfig tunes child expansion.
type HierarchyConfig struct {
	Transitive bool `toml:"transitive"`
}

// AuthConfig configures capability tokens and anti-forgery nonces.
type AuthConfig struct {
	SigningKey    string        `toml:"signing_key"`
	Issuer        string        `toml:"issuer"`
	TokenTTL      time.Duration `toml:"token_ttl"`
	NonceKey      string        `toml:"nonce_key"`
	NonceLifetime time.Duration `toml:"nonce_lifetime"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level    string            `toml:"level"`
	Format   string            `toml:"format"`
	File     string            `toml:"file"`
	Rotation LogRotationConfig `toml:"rotation"`
}

// Built-in secrets. Fine for local use, never for a shared server.
const (
	DefaultSigningKey = "dev-secret-key-change-in-production"
	DefaultNonceKey   = "dev-nonce-key-change-in-production"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	xdg := NewXDGConfig()
	return &Config{
		Server: ServerConfig{
			Listen:          constants.DefaultListenAddress,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Store: StoreConfig{DSN: xdg.DefaultStoreDSN()},
		Auth: AuthConfig{
			SigningKey:    DefaultSigningKey,
			Issuer:        constants.DefaultTokenIssuer,
			TokenTTL:      time.Hour,
			NonceKey:      DefaultNonceKey,
			NonceLifetime: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:    "info",
			Format:   LoggingFormatJSON,
			Rotation: DefaultLogRotationConfig(),
		},
		ContentTypes: []string{"post", "page"},
	}
}

// Load reads path over the defaults and applies environment overrides. A missing
// file is not an error. An empty path uses the XDG location.
func Load(path string) (*Config, error) {
	if path == "" {
		path = NewXDGConfig().GetConfigPath()
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as TOML.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal TOML config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from BM_* environment variables.
func (c *Config) ApplyEnv() {
	c.Server.Listen = getEnv("LISTEN", c.Server.Listen)
	c.Store.DSN = getEnv("STORE_DSN", c.Store.DSN)
	c.Registry.CatalogFile = getEnv("CATALOG_FILE", c.Registry.CatalogFile)
	c.Hierarchy.Transitive = getEnvBool("HIERARCHY_TRANSITIVE", c.Hierarchy.Transitive)
	c.Auth.SigningKey = getEnv("SIGNING_KEY", c.Auth.SigningKey)
	c.Auth.Issuer = getEnv("TOKEN_ISSUER", c.Auth.Issuer)
	c.Auth.TokenTTL = getEnvDuration("TOKEN_TTL", c.Auth.TokenTTL)
	c.Auth.NonceKey = getEnv("NONCE_KEY", c.Auth.NonceKey)
	c.Auth.NonceLifetime = getEnvDuration("NONCE_LIFETIME", c.Auth.NonceLifetime)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
	if types := getEnv("CONTENT_TYPES", ""); types != "" {
		c.ContentTypes = splitList(types)
	}
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if c.Store.DSN == "" {
		return fmt.Errorf("store.dsn must not be empty")
	}
	if !IsValidLoggingFormat(c.Log.Format) {
		return fmt.Errorf("log.format must be %q or %q, got %q", LoggingFormatJSON, LoggingFormatConsole, c.Log.Format)
	}
	if c.Auth.NonceLifetime < 2*time.Second {
		return fmt.Errorf("auth.nonce_lifetime too short: %s", c.Auth.NonceLifetime)
	}
	return nil
}

// DefaultSecrets names the auth secrets still set to their built-in values.
func (c *Config) DefaultSecrets() []string {
	var names []string
	if c.Auth.SigningKey == DefaultSigningKey {
		names = append(names, "auth.signing_key")
	}
	if c.Auth.NonceKey == DefaultNonceKey {
		names = append(names, "auth.nonce_key")
	}
	return names
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(constants.EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(constants.EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(constants.EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
