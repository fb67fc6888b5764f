package kafka

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/scram"

	"ddsloader/config"
)

// saslDialer returns nil when no credentials are configured.
func saslDialer(cfg config.KafkaConfig) (*kafka.Dialer, *kafka.Transport, error) {
	if cfg.Username == "" {
		return nil, nil, nil
	}
	mechanism, err := scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build SCRAM mechanism: %w", err)
	}
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	dialer := &kafka.Dialer{
		Timeout:       10 * time.Second,
		DualStack:     true,
		SASLMechanism: mechanism,
		TLS:           tlsConfig,
	}
	transport := &kafka.Transport{
		SASL: mechanism,
		TLS:  tlsConfig,
	}
	return dialer, transport, nil
}
