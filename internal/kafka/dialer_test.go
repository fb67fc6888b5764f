package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"ddsloader/config"
)

func TestSASLDialerWithoutCredentials(t *testing.T) {
	dialer, transport, err := saslDialer(config.KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	assert.Nil(t, dialer)
	assert.Nil(t, transport)
}

func TestSASLDialerUsesSCRAMOverTLS(t *testing.T) {
	dialer, transport, err := saslDialer(config.KafkaConfig{Username: "producer_consumer", Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, dialer)
	require.NotNil(t, transport)

	assert.Equal(t, "SCRAM-SHA-512", dialer.SASLMechanism.Name())
	assert.NotNil(t, dialer.TLS)
	assert.Equal(t, dialer.SASLMechanism, transport.SASL)
}

func TestNewProducerTargetsDestinationTopic(t *testing.T) {
	p, err := NewProducer(config.KafkaConfig{
		Brokers:          []string{"localhost:9092"},
		DestinationTopic: "dds-service-orders",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "dds-service-orders", p.writer.Topic)
	assert.Nil(t, p.writer.Transport)
}
