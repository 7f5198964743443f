package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config
// file. Environment variables (prefix RENSHU_, dots and dashes replaced
// by underscores) take precedence over values from the config file.
// Returns a populated Config struct or an error if loading or validation
// fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/renshu")

	v.SetEnvPrefix("RENSHU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; env vars and defaults carry the load.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the defaults for everything that has a sane one.
// The database URL and review store base URL have no defaults and must be
// provided.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Registered empty so AutomaticEnv can populate them during Unmarshal;
	// validation still rejects a missing value.
	v.SetDefault("database.url", "")
	v.SetDefault("review_store.base_url", "")

	v.SetDefault("offline.path", "renshu-offline.db")
	v.SetDefault("offline.max_bytes", 0)

	v.SetDefault("submission.chunk_size", 100)
	v.SetDefault("submission.chunk_timeout", 30*time.Second)
	v.SetDefault("submission.flush_interval", 5*time.Minute)

	v.SetDefault("review_store.timeout", 15*time.Second)
}
