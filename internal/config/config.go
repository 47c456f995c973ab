// Package config provides configuration management for xtreamr using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "XTREAMR"

// Default configuration values.
const (
	defaultProviderName      = "xtream"
	defaultReloadThreshold   = 8 * time.Hour
	defaultConnectTimeout    = 2 * time.Second
	defaultReadTimeout       = 15 * time.Second
	defaultRetryAttempts     = 2
	defaultRetryDelay        = time.Second
	defaultRequestsPerSecond = 5.0
	defaultChunkSize         = "4MiB"
	defaultMinFreeSpace      = "64MiB"
	defaultWarmSchedule      = "0 */6 * * *"
)

// Config holds all configuration for the application.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Cache    CacheConfig    `mapstructure:"cache"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Download DownloadConfig `mapstructure:"download"`
	Database DatabaseConfig `mapstructure:"database"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ProviderConfig identifies the Xtream provider and the account used against it.
type ProviderConfig struct {
	Name      string `mapstructure:"name"`
	URL       string `mapstructure:"url"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	HideAdult bool   `mapstructure:"hide_adult"`
}

// CacheConfig holds the local snapshot cache configuration.
type CacheConfig struct {
	// Dir is the cache directory. Empty or a non-directory path falls back to ~/.xtream-cache.
	Dir string `mapstructure:"dir"`
	// ReloadThreshold is the snapshot age after which the provider is queried again.
	// Zero or negative disables expiry.
	ReloadThreshold time.Duration `mapstructure:"reload_threshold"`
	Backend         string        `mapstructure:"backend"` // file, redis
	RedisURL        string        `mapstructure:"redis_url"`
}

// HTTPConfig holds provider transport configuration.
type HTTPConfig struct {
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 = unlimited
	UserAgent         string        `mapstructure:"user_agent"`
}

// DownloadConfig holds VOD download configuration.
type DownloadConfig struct {
	// ChunkSize supports human-readable values like "4MiB".
	ChunkSize    ByteSize `mapstructure:"chunk_size"`
	MinFreeSpace ByteSize `mapstructure:"min_free_space"`
}

// DatabaseConfig holds the catalog export database configuration.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"` // silent, error, warn, info
}

// ScheduleConfig holds the cache warmer schedule.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"` // 5-field cron expression
}

// MetricsConfig holds metrics output configuration.
type MetricsConfig struct {
	// Textfile is written in the Prometheus text format after each command. Empty disables.
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with XTREAMR_ and use underscores for nesting.
// Example: XTREAMR_PROVIDER_URL=http://example.com:8080.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("xtreamr")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/xtreamr")
		v.AddConfigPath("$HOME/.xtreamr")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates configuration from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file to ensure defaults are in place.
func SetDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("provider.name", defaultProviderName)
	v.SetDefault("provider.url", "")
	v.SetDefault("provider.username", "")
	v.SetDefault("provider.password", "")
	v.SetDefault("provider.hide_adult", false)

	// Cache defaults
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.reload_threshold", defaultReloadThreshold)
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.redis_url", "")

	// HTTP defaults
	v.SetDefault("http.connect_timeout", defaultConnectTimeout)
	v.SetDefault("http.read_timeout", defaultReadTimeout)
	v.SetDefault("http.retry_attempts", defaultRetryAttempts)
	v.SetDefault("http.retry_delay", defaultRetryDelay)
	v.SetDefault("http.requests_per_second", defaultRequestsPerSecond)
	v.SetDefault("http.user_agent", "")

	// Download defaults
	v.SetDefault("download.chunk_size", defaultChunkSize)
	v.SetDefault("download.min_free_space", defaultMinFreeSpace)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "xtreamr.db")
	v.SetDefault("database.log_level", "warn")

	// Schedule defaults
	v.SetDefault("schedule.cron", defaultWarmSchedule)

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)
}

// Validate checks the configuration for errors.
// Provider credentials are checked separately by ProviderConfig.Validate so that
// commands which never talk to a provider can run with defaults only.
func (c *Config) Validate() error {
	validBackends := map[string]bool{"file": true, "redis": true}
	if !validBackends[c.Cache.Backend] {
		return fmt.Errorf("cache.backend must be one of: file, redis")
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url is required when cache.backend is redis")
	}

	if c.HTTP.ConnectTimeout <= 0 || c.HTTP.ReadTimeout <= 0 {
		return fmt.Errorf("http.connect_timeout and http.read_timeout must be positive")
	}
	if c.HTTP.RetryAttempts < 0 {
		return fmt.Errorf("http.retry_attempts must not be negative")
	}
	if c.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requests_per_second must not be negative")
	}

	if c.Download.ChunkSize <= 0 {
		return fmt.Errorf("download.chunk_size must be positive")
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Validate checks that enough is configured to reach a provider.
func (p *ProviderConfig) Validate() error {
	switch {
	case p.URL == "":
		return fmt.Errorf("provider.url is required")
	case p.Username == "":
		return fmt.Errorf("provider.username is required")
	case p.Password == "":
		return fmt.Errorf("provider.password is required")
	case p.Name == "":
		return fmt.Errorf("provider.name is required")
	}
	return nil
}
