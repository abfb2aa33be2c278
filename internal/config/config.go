package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"     validate:"required"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Task      TaskConfig      `mapstructure:"task"      validate:"required"`
	Inference InferenceConfig `mapstructure:"inference" validate:"required"`
}

// ServerConfig contains all HTTP-server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// RedisConfig locates the task store.
type RedisConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
}

// WebhookConfig carries process-wide callback settings. URL and Secret are
// fallbacks applied when a request does not name its own; TimeoutSeconds
// bounds a single delivery attempt.
type WebhookConfig struct {
	URL            string `mapstructure:"url"             validate:"omitempty,url"`
	Secret         string `mapstructure:"secret"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// TaskConfig governs task record lifetime and background dispatch.
// TTLSeconds is the record's time-to-live from the processing write;
// WorkerCount and QueueSize size the webhook dispatch pool.
type TaskConfig struct {
	TTLSeconds  int `mapstructure:"ttl_seconds"  validate:"required,gt=0"`
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"gt=0"`
}

// InferenceConfig selects and parameterizes the model backend.
type InferenceConfig struct {
	Provider     string `mapstructure:"provider"       validate:"required,oneof=keyword gemini"`
	ModelVersion string `mapstructure:"model_version"  validate:"required"`
	LatencyMS    int    `mapstructure:"latency_ms"     validate:"gte=0"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`
}
