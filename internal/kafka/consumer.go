package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"ddsloader/config"
	"ddsloader/internal/queue"
)

// Consumer reads the source topic inside a consumer group. Offsets are committed only
// when a delivery is acknowledged, so a failed event is redelivered after restart.
type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(cfg config.KafkaConfig, log *zap.Logger) (*Consumer, error) {
	dialer, _, err := saslDialer(cfg)
	if err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.SourceTopic,
		GroupID:     cfg.ConsumerGroup,
		Dialer:      dialer,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.FirstOffset,
	})

	return &Consumer{
		reader: reader,
		log:    log.Named("kafka.consumer").With(zap.String("topic", cfg.SourceTopic)),
	}, nil
}

func (c *Consumer) Receive(ctx context.Context, wait time.Duration) (queue.Delivery, bool, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	msg, err := c.reader.FetchMessage(fetchCtx)
	if err != nil {
		// Only our own deadline means "no data"; a cancelled parent is a shutdown.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return queue.Delivery{}, false, nil
		}
		return queue.Delivery{}, false, fmt.Errorf("failed to fetch message: %w", err)
	}

	c.log.Debug("fetched message",
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset))

	return queue.NewDelivery(msg.Key, msg.Value, func(ctx context.Context) error {
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("failed to commit offset %d: %w", msg.Offset, err)
		}
		return nil
	}), true, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
