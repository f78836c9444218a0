package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Port uint16 `mapstructure:"port" validate:"required"`
	// Debug, if true, lowers the log level and logs every HTTP request.
	Debug bool `mapstructure:"debug"`
	// DbUrl is the SQLite connection string of the report cache and the task queue.
	DbUrl            string `mapstructure:"db_url" validate:"required"`
	MigrationsFolder string `mapstructure:"migrations_folder" validate:"required"`
	// SessionKey signs the session cookie. A random key is generated at startup when empty, which logs every
	// browser out on restart.
	SessionKey string `mapstructure:"session_key" validate:"omitempty,len=32"`
	// Timezone is the IANA name of the location used by the local timezone mode when the request names none.
	Timezone string `mapstructure:"timezone"`

	Fetch FetchConfig `mapstructure:"fetch"`
	Cache CacheConfig `mapstructure:"cache"`
	Queue QueueConfig `mapstructure:"queue"`
}

type FetchConfig struct {
	PageSize       int           `mapstructure:"page_size" validate:"min=1,max=40"`
	MaxPages       int           `mapstructure:"max_pages" validate:"min=1"`
	PageDelay      time.Duration `mapstructure:"page_delay" validate:"min=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxRetries     int           `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" validate:"gt=0"`
	MaxRetryAfter  time.Duration `mapstructure:"max_retry_after" validate:"gt=0"`
	UserAgent      string        `mapstructure:"user_agent" validate:"required"`
}

type CacheConfig struct {
	// TTL is how long a generated report is served before it is regenerated.
	TTL time.Duration `mapstructure:"ttl" validate:"gt=0"`
	// PurgeInterval is how often reports older than TTL are deleted.
	PurgeInterval time.Duration `mapstructure:"purge_interval" validate:"gt=0"`
}

type QueueConfig struct {
	Workers         int           `mapstructure:"workers" validate:"min=1"`
	ReleaseAfter    time.Duration `mapstructure:"release_after" validate:"gt=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("debug", false)
	v.SetDefault("db_url", "file:wrapped.db?_journal=WAL&_timeout=5000")
	v.SetDefault("migrations_folder", "migrations")
	v.SetDefault("session_key", "")
	v.SetDefault("timezone", "")

	v.SetDefault("fetch.page_size", 40)
	v.SetDefault("fetch.max_pages", 100)
	v.SetDefault("fetch.page_delay", 200*time.Millisecond)
	v.SetDefault("fetch.request_timeout", 15*time.Second)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.retry_base_delay", time.Second)
	v.SetDefault("fetch.max_retry_after", time.Minute)
	v.SetDefault("fetch.user_agent", "tootwrapped/1.0")

	v.SetDefault("cache.ttl", 6*time.Hour)
	v.SetDefault("cache.purge_interval", time.Hour)

	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.release_after", 10*time.Minute)
	v.SetDefault("queue.cleanup_interval", time.Hour)
}

// ReadConfig loads wrapped.yaml from the working directory or /etc/tootwrapped, if present, and applies
// WRAPPED_ prefixed environment variables on top, e.g. WRAPPED_FETCH_PAGE_DELAY=500ms.
func ReadConfig() (Configuration, error) {
	v := viper.New()
	v.SetConfigName("wrapped")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/tootwrapped")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Configuration{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (Configuration, error) {
	setDefaults(v)
	v.SetEnvPrefix("WRAPPED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return Configuration{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Configuration{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
