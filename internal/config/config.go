// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"instance-allocator/internal/errors"
	"instance-allocator/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. ALLOCATOR_CATALOG_PATH
const EnvPrefix = "ALLOCATOR"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" ignored:"true"`

	// Catalog selects where instance prices come from
	Catalog CatalogConfig `json:"catalog"`

	// AWS contains AWS Pricing API settings
	AWS AWSConfig `json:"aws"`

	// Engine contains solver settings
	Engine EngineConfig `json:"engine"`

	// Output contains output-related settings
	Output OutputConfig `json:"output"`

	// Server contains HTTP API settings
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" envconfig:"LOG"`
}

// CatalogConfig contains catalog source settings
type CatalogConfig struct {
	// Source is the catalog source name (file, aws)
	Source string `json:"source"`

	// Path is the catalog file for the file source (.json, .yaml, .hcl)
	Path string `json:"path"`

	// CacheTTL is how long a loaded catalog is reused, 0 disables caching
	CacheTTL Duration `json:"cache_ttl" envconfig:"CACHE_TTL"`
}

// AWSConfig contains AWS-specific settings
type AWSConfig struct {
	// PricingRegion is the region of the Pricing API endpoint
	PricingRegion string `json:"pricing_region" envconfig:"PRICING_REGION"`

	// Profile is the AWS profile to use
	Profile string `json:"profile,omitempty"`

	// Regions to price; empty means every region EC2 reports
	Regions []string `json:"regions,omitempty"`

	// Family is the instance family the sizes are priced in, e.g. "m4"
	Family string `json:"family"`

	// RetryAttempts bounds retries of throttled Pricing API calls
	RetryAttempts uint `json:"retry_attempts" envconfig:"RETRY_ATTEMPTS"`

	// Concurrency bounds parallel region fetches
	Concurrency int `json:"concurrency"`
}

// EngineConfig contains solver settings
type EngineConfig struct {
	// Workers bounds how many regions are solved in parallel
	Workers int `json:"workers"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" envconfig:"FORMAT"`

	// RoundCents renders costs to two decimals instead of full precision
	RoundCents bool `json:"round_cents" envconfig:"ROUND_CENTS"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// ResponseCacheTTL is how long identical requests are answered from memory
	ResponseCacheTTL Duration `json:"response_cache_ttl" envconfig:"RESPONSE_CACHE_TTL"`
}

// Duration is a time.Duration that reads and writes as a string like "15m"
type Duration struct {
	time.Duration
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.Decode(s)
}

// Decode implements envconfig.Decoder
func (d *Duration) Decode(value string) error {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Catalog: CatalogConfig{
			Source:   "file",
			Path:     "catalog.yaml",
			CacheTTL: Duration{15 * time.Minute},
		},
		AWS: AWSConfig{
			PricingRegion: "us-east-1",
			Family:        "m4",
			RetryAttempts: 5,
			Concurrency:   4,
		},
		Engine: EngineConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			RoundCents:    false,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			ResponseCacheTTL: Duration{5 * time.Minute},
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the per-user configuration file location
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".instance-allocator", "config.json")
}

// Load loads configuration from a file and applies environment overrides
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, errors.Config("parse "+path, err)
		}
	case !os.IsNotExist(err):
		return nil, errors.Config("read "+path, err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from ALLOCATOR_* environment variables
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return errors.Config("environment overrides", err)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
