package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Loader.BatchSize)
	assert.Equal(t, 3*time.Second, cfg.Loader.PollTimeout)
	assert.Equal(t, "orders-system-kafka", cfg.Loader.LoadSource)
	assert.Equal(t, BrokerKafka, cfg.Loader.Broker)
	assert.False(t, cfg.Loader.Transactional)
	assert.True(t, cfg.Loader.PublishEmptyCounters)
	assert.False(t, cfg.ClickHouse.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOADER_BATCH_SIZE", "5")
	t.Setenv("LOADER_POLL_TIMEOUT", "1.5")
	t.Setenv("LOADER_BROKER", "RabbitMQ")
	t.Setenv("LOADER_TRANSACTIONAL", "true")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("CLICKHOUSE_HOST", "ch")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Loader.BatchSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.Loader.PollTimeout)
	assert.Equal(t, BrokerRabbitMQ, cfg.Loader.Broker)
	assert.True(t, cfg.Loader.Transactional)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.ClickHouse.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadLoader(t *testing.T) {
	t.Setenv("LOADER_BATCH_SIZE", "0")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	cfg.Loader.BatchSize = 1
	cfg.Loader.Broker = "nats"
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresBrokerTopics(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Kafka.SourceTopic = ""
	assert.Error(t, cfg.Validate())
}
