package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"ddsloader/config"
	"ddsloader/internal/queue"
)

// pollInterval is how long Receive sleeps between empty basic.get calls.
const pollInterval = 100 * time.Millisecond

type Consumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	log       *zap.Logger
}

func NewConsumer(cfg config.RabbitMQConfig, log *zap.Logger) (*Consumer, error) {
	conn, channel, err := dial(cfg)
	if err != nil {
		return nil, err
	}

	// Set prefetch count
	if err := channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := declare(channel, cfg.SourceQueue); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &Consumer{
		conn:      conn,
		channel:   channel,
		queueName: cfg.SourceQueue,
		log:       log.Named("rabbitmq.consumer").With(zap.String("queue", cfg.SourceQueue)),
	}, nil
}

func dial(cfg config.RabbitMQConfig) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return conn, channel, nil
}

// declare is idempotent.
func declare(channel *amqp.Channel, queueName string) error {
	_, err := channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	return nil
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Receive polls basic.get until a message arrives or wait elapses.
func (c *Consumer) Receive(ctx context.Context, wait time.Duration) (queue.Delivery, bool, error) {
	deadline := time.Now().Add(wait)
	for {
		msg, ok, err := c.channel.Get(c.queueName, false)
		if err != nil {
			return queue.Delivery{}, false, fmt.Errorf("failed to get message: %w", err)
		}
		if ok {
			c.log.Debug("received message", zap.Uint64("delivery_tag", msg.DeliveryTag))
			return queue.NewDelivery([]byte(msg.CorrelationId), msg.Body, func(context.Context) error {
				return msg.Ack(false)
			}), true, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return queue.Delivery{}, false, nil
		}
		select {
		case <-ctx.Done():
			return queue.Delivery{}, false, ctx.Err()
		case <-time.After(min(pollInterval, remaining)):
		}
	}
}
