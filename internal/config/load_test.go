package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 10, cfg.Webhook.TimeoutSeconds)
	assert.Equal(t, 60, cfg.Task.TTLSeconds)
	assert.Equal(t, 2, cfg.Task.WorkerCount)
	assert.Equal(t, 100, cfg.Task.QueueSize)
	assert.Equal(t, "keyword", cfg.Inference.Provider)
	assert.Equal(t, "v1.0", cfg.Inference.ModelVersion)
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("INSIGHTFORGE_SERVER_PORT", "9090")
	t.Setenv("INSIGHTFORGE_SERVER_LOG_LEVEL", "debug")
	t.Setenv("INSIGHTFORGE_REDIS_HOST", "redis.internal")
	t.Setenv("INSIGHTFORGE_WEBHOOK_SECRET", "super-secret")
	t.Setenv("INSIGHTFORGE_TASK_TTL_SECONDS", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "redis.internal", cfg.Redis.Host)
	assert.Equal(t, "super-secret", cfg.Webhook.Secret)
	assert.Equal(t, 120, cfg.Task.TTLSeconds)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "InvalidLogLevel", key: "INSIGHTFORGE_SERVER_LOG_LEVEL", value: "verbose"},
		{name: "PortOutOfRange", key: "INSIGHTFORGE_SERVER_PORT", value: "70000"},
		{name: "UnknownProvider", key: "INSIGHTFORGE_INFERENCE_PROVIDER", value: "oracle"},
		{name: "NonPositiveTTL", key: "INSIGHTFORGE_TASK_TTL_SECONDS", value: "0"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
