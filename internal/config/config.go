// Package config loads AquaForm settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"aquaform/internal/advisor"
)

// Default values.
const (
	DefaultHost   = "0.0.0.0"
	DefaultPort   = 8011
	DefaultDBPath = "aquaform.db"

	DefaultAPIKeyEnv     = "GEMINI_API_KEY"
	LegacyAPIKeyEnv      = "API_KEY"
	DefaultGatewayKeyEnv = "AQUAFORM_GATEWAY_KEY"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Catalog CatalogConfig `yaml:"catalog"`
	AI      AIConfig      `yaml:"ai"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr is host:port for the listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	// DBPath is the SQLite file. An empty path disables persistence.
	DBPath string `yaml:"db_path"`
}

type CatalogConfig struct {
	// Path is an optional YAML catalog replacing the built-in library.
	Path string `yaml:"path"`
	// Watch reloads Path when it changes (serve mode only).
	Watch bool `yaml:"watch"`
}

type AIConfig struct {
	// Backend is one of: gemini | gateway | none.
	Backend string `yaml:"backend"`
	Model   string `yaml:"model"`

	// APIKeyEnv names the variable holding the Gemini key.
	APIKeyEnv string `yaml:"api_key_env"`

	GatewayURL    string `yaml:"gateway_url"`
	GatewayKeyEnv string `yaml:"gateway_key_env"`

	Timeout time.Duration `yaml:"timeout"`
}

// APIKey resolves the Gemini key from the environment, falling back to the
// legacy API_KEY variable.
func (a AIConfig) APIKey() string {
	if a.APIKeyEnv != "" {
		if v := os.Getenv(a.APIKeyEnv); v != "" {
			return v
		}
	}
	return os.Getenv(LegacyAPIKeyEnv)
}

// GatewayKey resolves the gateway bearer key from the environment.
func (a AIConfig) GatewayKey() string {
	if a.GatewayKeyEnv == "" {
		return ""
	}
	return os.Getenv(a.GatewayKeyEnv)
}

// Advisor converts the section to advisor settings with secrets resolved.
func (a AIConfig) Advisor() advisor.Config {
	return advisor.Config{
		Backend:    a.Backend,
		Model:      a.Model,
		APIKey:     a.APIKey(),
		GatewayURL: a.GatewayURL,
		GatewayKey: a.GatewayKey(),
		Timeout:    a.Timeout,
	}
}

type LogConfig struct {
	// File receives logs instead of stderr when set.
	File    string `yaml:"file"`
	Verbose bool   `yaml:"verbose"`
}

func Default() *Config {
	return &Config{
		Server:  ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Storage: StorageConfig{DBPath: DefaultDBPath},
		AI: AIConfig{
			Backend:       advisor.BackendGemini,
			Model:         advisor.DefaultModel,
			APIKeyEnv:     DefaultAPIKeyEnv,
			GatewayKeyEnv: DefaultGatewayKeyEnv,
			Timeout:       advisor.DefaultTimeout,
		},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Host = getenv("AQUAFORM_HOST", c.Server.Host)
	c.Storage.DBPath = getenv("AQUAFORM_DB_PATH", c.Storage.DBPath)
	c.Catalog.Path = getenv("AQUAFORM_CATALOG", c.Catalog.Path)
	c.AI.Backend = getenv("AQUAFORM_AI_BACKEND", c.AI.Backend)
	c.AI.Model = getenv("AQUAFORM_AI_MODEL", c.AI.Model)
	c.AI.GatewayURL = getenv("AQUAFORM_GATEWAY_URL", c.AI.GatewayURL)
	c.Log.File = getenv("AQUAFORM_LOG_FILE", c.Log.File)

	var err error
	if c.Server.Port, err = atoienv("AQUAFORM_PORT", c.Server.Port); err != nil {
		return err
	}
	if c.Catalog.Watch, err = boolenv("AQUAFORM_CATALOG_WATCH", c.Catalog.Watch); err != nil {
		return err
	}
	if c.AI.Timeout, err = durenv("AQUAFORM_AI_TIMEOUT", c.AI.Timeout); err != nil {
		return err
	}
	return nil
}

// Validate checks the config for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.AI.Backend {
	case advisor.BackendGemini, advisor.BackendGateway, advisor.BackendNone:
	default:
		return fmt.Errorf("ai.backend %q: must be gemini, gateway or none", c.AI.Backend)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %s", c.AI.Timeout)
	}
	if c.Catalog.Watch && c.Catalog.Path == "" {
		return fmt.Errorf("catalog.watch requires catalog.path")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolenv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durenv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
