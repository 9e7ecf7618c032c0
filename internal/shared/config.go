package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from the config file.
const (
	EnvAPIURL    = "MMX_API_URL"
	EnvTokenPath = "MMX_TOKEN_PATH"
	EnvDBPath    = "MMX_DB_PATH"
	EnvLogLevel  = "MMX_LOG_LEVEL"
	EnvRateLimit = "MMX_RATE_LIMIT"
	EnvPassword  = "MMX_PASSWORD"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Auth     AuthConfig     `toml:"auth"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"`
}

// AuthConfig contains bearer token storage settings.
type AuthConfig struct {
	TokenPath string `toml:"token_path"`
}

// DatabaseConfig contains decision journal connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveConfig loads the config at path when it exists (defaults otherwise), then applies environment overrides.
//
// Variables from envFiles (typically ".env") are loaded first; missing env files are ignored.
func ResolveConfig(path string, envFiles ...string) (*Config, error) {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, f, err)
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides config values with any MMX_* variables reported by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := lookup(EnvTokenPath); ok && v != "" {
		c.Auth.TokenPath = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvRateLimit); ok && v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil || limit <= 0 {
			return fmt.Errorf("%w: %s must be a positive number, got %q", ErrInvalidConfig, EnvRateLimit, v)
		}
		c.API.RateLimit = limit
	}
	return nil
}
