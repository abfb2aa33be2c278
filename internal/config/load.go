package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces the service's environment variables, e.g.
// INSIGHTFORGE_SERVER_PORT or INSIGHTFORGE_WEBHOOK_SECRET.
const envPrefix = "INSIGHTFORGE"

// Load configuration from environment variables and optionally a config
// file (config.yaml in the working directory). Environment variables take
// precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env and defaults carry the load.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the reference defaults: 60s task TTL, 10s webhook
// delivery timeout, the keyword model at v1.0, and a local Redis.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)

	// Empty defaults register the keys so environment-only values are
	// picked up by Unmarshal.
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.timeout_seconds", 10)

	v.SetDefault("task.ttl_seconds", 60)
	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)

	v.SetDefault("inference.provider", "keyword")
	v.SetDefault("inference.model_version", "v1.0")
	v.SetDefault("inference.latency_ms", 0)
	v.SetDefault("inference.gemini_api_key", "")
	v.SetDefault("inference.gemini_model", "gemini-2.0-flash")
}
