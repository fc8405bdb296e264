// Package config loads the application configuration from YAML files
// and the environment. A missing file is not an error; defaults cover
// a full local run against the mock providers.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/strategos-io/strategos/pkg/telemetry"
)

// Config is the top-level application configuration.
type Config struct {
	Telemetry telemetry.Config `yaml:"telemetry"`
	Storage   StorageConfig    `yaml:"storage"`
	Runner    RunnerConfig     `yaml:"runner"`
	Policy    PolicyConfig     `yaml:"policy"`
	Providers ProvidersConfig  `yaml:"providers"`
}

// StorageConfig configures the session store.
type StorageConfig struct {
	// Path is the SQLite database file. Empty selects the in-memory
	// store, which does not survive the process.
	Path string `yaml:"path"`

	MaxOpenConns    int                `yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int                `yaml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime telemetry.Duration `yaml:"conn_max_lifetime"`
}

// RunnerConfig configures journey execution.
type RunnerConfig struct {
	// MaxRetries is the number of additional attempts after a failed
	// framework execution.
	MaxRetries int `yaml:"max_retries" validate:"gte=0,lte=10"`

	// BaseBackoff is the first retry delay.
	BaseBackoff telemetry.Duration `yaml:"base_backoff"`

	// MaxBackoff caps the retry delay.
	MaxBackoff telemetry.Duration `yaml:"max_backoff"`

	// ResearchLimit bounds citations fetched at journey start.
	ResearchLimit int `yaml:"research_limit" validate:"gte=1"`
}

// PolicyConfig configures governance policy loading.
type PolicyConfig struct {
	// Paths are .rego or .json policy files or directories, loaded in
	// addition to the built-in policies.
	Paths []string `yaml:"paths"`

	// Watch reloads policies when files under Paths change.
	Watch bool `yaml:"watch"`
}

// ProvidersConfig selects the model and research backends.
type ProvidersConfig struct {
	// Model is the analysis backend. Only "mock" ships in-tree; other
	// values are rejected so a misconfigured deployment fails loudly.
	Model string `yaml:"model" validate:"required,oneof=mock"`

	// Research is the evidence backend.
	Research string `yaml:"research" validate:"required,oneof=mock"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Telemetry: *telemetry.DefaultConfig(),
		Storage: StorageConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: telemetry.Duration(time.Hour),
		},
		Runner: RunnerConfig{
			MaxRetries:    2,
			BaseBackoff:   telemetry.Duration(time.Second),
			MaxBackoff:    telemetry.Duration(time.Minute),
			ResearchLimit: 8,
		},
		Providers: ProvidersConfig{
			Model:    "mock",
			Research: "mock",
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays the small set of environment overrides used in
// container deployments.
func applyEnv(cfg *Config) {
	if v := os.Getenv("STRATEGOS_LOG_LEVEL"); v != "" {
		cfg.Telemetry.Logging.Level = v
	}
	if v := os.Getenv("STRATEGOS_LOG_FORMAT"); v != "" {
		cfg.Telemetry.Logging.Format = v
	}
	if v := os.Getenv("STRATEGOS_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("STRATEGOS_ENVIRONMENT"); v != "" {
		cfg.Telemetry.Environment = v
	}
}

// Validate checks structural constraints and the telemetry section.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("invalid telemetry configuration: %w", err)
	}
	if c.Runner.BaseBackoff <= 0 {
		return fmt.Errorf("runner base backoff must be positive")
	}
	if c.Runner.MaxBackoff < c.Runner.BaseBackoff {
		return fmt.Errorf("runner max backoff must be at least the base backoff")
	}
	return nil
}
