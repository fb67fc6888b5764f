package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"ddsloader/config"
)

// Producer writes to the destination topic. Writes are synchronous so a publish failure
// surfaces to the worker before the source offset is committed.
type Producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewProducer(cfg config.KafkaConfig, log *zap.Logger) (*Producer, error) {
	_, transport, err := saslDialer(cfg)
	if err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.DestinationTopic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
	if transport != nil {
		writer.Transport = transport
	}

	return &Producer{
		writer: writer,
		log:    log.Named("kafka.producer").With(zap.String("topic", cfg.DestinationTopic)),
	}, nil
}

func (p *Producer) Publish(ctx context.Context, key string, body []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish message %s: %w", key, err)
	}
	p.log.Debug("published message", zap.String("key", key), zap.Int("bytes", len(body)))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
