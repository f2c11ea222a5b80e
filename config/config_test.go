package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the variables Load reads so host values cannot leak
// into the assertions. Empty values read as unset.
func clearEnv(t *testing.T) {
	t.Helper()

	keys := []string{
		"ENV",
		"SERVER_HTTP_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"QUEUE_MAX_LENGTH", "QUEUE_PRIORITY_ENABLED", "QUEUE_AUTO_PROGRESS_ENABLED",
		"QUEUE_AUTO_PROGRESS_DELAY", "QUEUE_ESTIMATION_ALGORITHM", "QUEUE_REFRESH_INTERVAL",
		"JWT_SECRET", "JWT_EXPIRY",
		"LOG_LEVEL", "LOG_MODE",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_CLIENT_ID", "KAFKA_CONSUMER_GROUP_ID",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8086, cfg.Server.HTTPPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 50, cfg.Queue.MaxQueueLength)
	assert.True(t, cfg.Queue.PriorityEnabled)
	assert.True(t, cfg.Queue.AutoProgressEnabled)
	assert.Equal(t, "simple", cfg.Queue.EstimationAlgorithm)
	assert.Equal(t, time.Minute, cfg.Queue.RefreshInterval)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiry)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_HTTP_PORT", "9090")
	t.Setenv("QUEUE_MAX_LENGTH", "5")
	t.Setenv("QUEUE_PRIORITY_ENABLED", "false")
	t.Setenv("QUEUE_REFRESH_INTERVAL", "30s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("JWT_EXPIRY", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 5, cfg.Queue.MaxQueueLength)
	assert.False(t, cfg.Queue.PriorityEnabled)
	assert.Equal(t, 30*time.Second, cfg.Queue.RefreshInterval)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Hour, cfg.JWT.Expiry)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUEUE_MAX_LENGTH", "a lot")
	t.Setenv("QUEUE_PRIORITY_ENABLED", "sure")
	t.Setenv("QUEUE_REFRESH_INTERVAL", "soonish")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Queue.MaxQueueLength)
	assert.True(t, cfg.Queue.PriorityEnabled)
	assert.Equal(t, time.Minute, cfg.Queue.RefreshInterval)
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
}

func TestConfig_Validate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		clearEnv(t)
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.HTTPPort = 70000 }},
		{"port zero", func(c *Config) { c.Server.HTTPPort = 0 }},
		{"missing redis addr", func(c *Config) { c.Redis.Addr = "" }},
		{"non-positive queue length", func(c *Config) { c.Queue.MaxQueueLength = 0 }},
		{"refresh interval too short", func(c *Config) { c.Queue.RefreshInterval = 100 * time.Millisecond }},
		{"unknown estimation algorithm", func(c *Config) { c.Queue.EstimationAlgorithm = "guesswork" }},
		{"kafka enabled without brokers", func(c *Config) { c.Kafka.Brokers = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_KafkaDisabledSkipsBrokers(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Kafka.Enabled = false
	cfg.Kafka.Brokers = nil
	assert.NoError(t, cfg.Validate())
}
