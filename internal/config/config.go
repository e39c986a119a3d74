package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// AppConfig holds the complete configuration for the application
type AppConfig struct {
	Environment string      `mapstructure:"environment"`
	LogLevel    string      `mapstructure:"log_level"`
	ServiceName string      `mapstructure:"service_name"`
	Fetch       FetchConfig `mapstructure:"fetch"`
	Cache       CacheConfig `mapstructure:"cache"`
	REST        RESTConfig  `mapstructure:"rest"`
	Redis       RedisConfig `mapstructure:"redis"`
}

// FetchConfig controls how pages are requested from the source site.
type FetchConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Transport      string        `mapstructure:"transport"` // "http" or "browser"
	UserAgent      string        `mapstructure:"user_agent"`
	MinInterval    time.Duration `mapstructure:"min_interval"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Size    int  `mapstructure:"size"`
}

type RESTConfig struct {
	Port string `mapstructure:"port"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	StreamPrefix string `mapstructure:"stream_prefix"`
}

// Load loads configuration from an optional file and HOOPS_* environment
// variables, e.g. HOOPS_FETCH_MIN_INTERVAL=2s.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "hoops")
	v.SetDefault("fetch.base_url", "https://www.basketball-reference.com")
	v.SetDefault("fetch.transport", "http")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("fetch.min_interval", 3*time.Second)
	v.SetDefault("fetch.timeout", 15*time.Second)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.initial_backoff", 1*time.Second)
	v.SetDefault("fetch.max_backoff", 30*time.Second)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 512)
	v.SetDefault("rest.port", "8080")
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("redis.stream_prefix", "bref")

	v.SetEnvPrefix("hoops")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *AppConfig) Validate() error {
	if c.Fetch.BaseURL == "" {
		return errors.New("fetch.base_url is required")
	}
	switch c.Fetch.Transport {
	case "http", "browser":
	default:
		return errors.Newf("fetch.transport must be http or browser, got %q", c.Fetch.Transport)
	}
	if c.Fetch.MinInterval < 0 {
		return errors.New("fetch.min_interval must not be negative")
	}
	if c.Fetch.Timeout <= 0 {
		return errors.New("fetch.timeout must be positive")
	}
	if c.Fetch.MaxRetries < 0 {
		return errors.New("fetch.max_retries must not be negative")
	}
	if c.Cache.Enabled && c.Cache.Size <= 0 {
		return errors.New("cache.size must be positive when the cache is enabled")
	}
	return nil
}
