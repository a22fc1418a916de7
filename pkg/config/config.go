// Package config loads and persists the aero-scope application
// configuration from a JSON file, with environment variable overrides for
// deployment-specific values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/unklstewy/aero-scope/pkg/fixture"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Source  SourceConfig  `json:"source"`
	Cache   CacheConfig   `json:"cache"`
	Refresh RefreshConfig `json:"refresh"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host"`

	// Port is the HTTP server port (default: "8080")
	Port string `json:"port"`

	// RequestsPerSecond throttles inbound API requests
	RequestsPerSecond float64 `json:"requests_per_second"`

	// Burst is the inbound throttle burst allowance
	Burst int `json:"burst"`
}

// SourceConfig selects and configures the flight data source. The mock/live
// choice is made once at startup; the rest of the application only sees the
// flight.Source interface.
type SourceConfig struct {
	// UseMockData switches from the live OpenSky API to static fixtures
	UseMockData bool `json:"use_mock_data"`

	// MockDataType is the fixture variant: all, europe, asia, busy,
	// empty, high-altitude, low-altitude or mixed
	MockDataType string `json:"mock_data_type"`

	// MockDelayMs is the simulated network delay for fixture responses
	MockDelayMs int `json:"mock_delay_ms"`

	// BaseURL is the live API endpoint
	BaseURL string `json:"base_url"`
}

// CacheConfig controls the persistent flight-data cache.
type CacheConfig struct {
	Enabled bool `json:"enabled"`

	// TTLMs is how long a cached collection stays valid
	TTLMs int `json:"ttl_ms"`

	// Dir is the on-disk cache location
	Dir string `json:"dir"`
}

// RefreshConfig controls the periodic background refresh.
type RefreshConfig struct {
	// AutoEnabled turns the periodic refresh on (default: off)
	AutoEnabled bool `json:"auto_enabled"`

	// IntervalMs is the refresh period
	IntervalMs int `json:"interval_ms"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error
	Level string `json:"level"`

	// Format is "console" or "json"
	Format string `json:"format"`
}

// Load reads configuration from a JSON file. If the file doesn't exist,
// returns the default configuration.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Source: SourceConfig{
			UseMockData:  false,
			MockDataType: string(fixture.VariantAll),
			MockDelayMs:  500,
			BaseURL:      "https://opensky-network.org/api",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTLMs:   5 * 60 * 1000,
			Dir:     "data/cache",
		},
		Refresh: RefreshConfig{
			AutoEnabled: false,
			IntervalMs:  5 * 60 * 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks values the rest of the application depends on.
func (c *Config) Validate() error {
	if _, err := fixture.ParseVariant(c.Source.MockDataType); err != nil {
		return err
	}
	if c.Cache.TTLMs <= 0 {
		return fmt.Errorf("cache ttl_ms must be positive, got %d", c.Cache.TTLMs)
	}
	if c.Refresh.IntervalMs <= 0 {
		return fmt.Errorf("refresh interval_ms must be positive, got %d", c.Refresh.IntervalMs)
	}
	return nil
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMs) * time.Millisecond
}

// RefreshInterval returns the periodic refresh interval as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalMs) * time.Millisecond
}

// MockDelay returns the fixture response delay as a duration.
func (c *Config) MockDelay() time.Duration {
	return time.Duration(c.Source.MockDelayMs) * time.Millisecond
}

// applyEnvironmentOverrides applies environment variable overrides. This
// keeps deployment-specific values out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("AERO_SCOPE_PORT"); port != "" {
		c.Server.Port = port
	}
	if baseURL := os.Getenv("AERO_SCOPE_BASE_URL"); baseURL != "" {
		c.Source.BaseURL = baseURL
	}
	if mock := os.Getenv("AERO_SCOPE_USE_MOCK_DATA"); mock != "" {
		c.Source.UseMockData = mock == "true"
	}
	if mockType := os.Getenv("AERO_SCOPE_MOCK_DATA_TYPE"); mockType != "" {
		c.Source.MockDataType = mockType
	}
	if cacheDir := os.Getenv("AERO_SCOPE_CACHE_DIR"); cacheDir != "" {
		c.Cache.Dir = cacheDir
	}
	if auto := os.Getenv("AERO_SCOPE_AUTO_REFRESH"); auto != "" {
		c.Refresh.AutoEnabled = auto == "true"
	}
	if level := os.Getenv("AERO_SCOPE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if ttl := os.Getenv("AERO_SCOPE_CACHE_TTL_MS"); ttl != "" {
		if v, err := strconv.Atoi(ttl); err == nil && v > 0 {
			c.Cache.TTLMs = v
		}
	}
}
