// Package config provides configuration management for jobdoctor.
//
// Values come from (highest first) bound command-line flags, JOBDOCTOR_*
// environment variables, an optional jobdoctor.yaml, and defaults. The
// distributed-mode settings also honour the bare REDPANDA_BROKERS and
// POSTGRES_DSN variables.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "JOBDOCTOR"
	ConfigName = "jobdoctor"
)

// Keys.
const (
	KeyPostgresDSN     = "postgres_dsn"
	KeyRedpandaBrokers = "redpanda_brokers"
	KeyParallelism     = "parallelism"
	KeyFormat          = "format"
	KeyLogFormat       = "log_format"
	KeyWatchDebounce   = "watch_debounce"
)

// Config holds the application configuration.
type Config struct {
	// PostgresDSN is the connection string of the report store (distributed mode).
	PostgresDSN string `mapstructure:"postgres_dsn"`
	// RedpandaBrokers are the seed brokers. Setting them selects distributed mode.
	RedpandaBrokers []string `mapstructure:"redpanda_brokers"`
	// Parallelism is the number of jobs audited at once.
	Parallelism int `mapstructure:"parallelism"`
	// Format is the report format: text, json or yaml.
	Format string `mapstructure:"format"`
	// LogFormat selects the logger: text, structured or silent (the default).
	LogFormat string `mapstructure:"log_format"`
	// WatchDebounce is how long watch waits for the builds directory to settle.
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

var (
	formats    = []string{"text", "json", "yaml"}
	logFormats = []string{"text", "structured", "silent"}
)

// NewViper returns a viper instance with jobdoctor's defaults, environment
// bindings and config file search path. Callers may bind flags to it
// before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyParallelism, runtime.NumCPU())
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyLogFormat, "silent")
	v.SetDefault(KeyWatchDebounce, 2*time.Second)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyRedpandaBrokers, EnvPrefix+"_REDPANDA_BROKERS", "REDPANDA_BROKERS")
	_ = v.BindEnv(KeyPostgresDSN, EnvPrefix+"_POSTGRES_DSN", "POSTGRES_DSN")

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/jobdoctor")

	return v
}

// Load reads the config file (if any) and decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.RedpandaBrokers = splitList(cfg.RedpandaBrokers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from defaults, the environment and an
// optional config file, without command-line flags.
func LoadFromEnv() (*Config, error) {
	return Load(NewViper())
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyParallelism, c.Parallelism)
	}
	if !oneOf(c.Format, formats) {
		return fmt.Errorf("%s must be one of %s, got %q", KeyFormat, strings.Join(formats, ", "), c.Format)
	}
	if !oneOf(c.LogFormat, logFormats) {
		return fmt.Errorf("%s must be one of %s, got %q", KeyLogFormat, strings.Join(logFormats, ", "), c.LogFormat)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("%s must not be negative", KeyWatchDebounce)
	}
	if c.Distributed() && c.PostgresDSN == "" {
		return fmt.Errorf("%s is required when %s is set", KeyPostgresDSN, KeyRedpandaBrokers)
	}
	return nil
}

// Distributed reports whether Redpanda brokers are configured.
func (c *Config) Distributed() bool {
	return len(c.RedpandaBrokers) > 0
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func oneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
