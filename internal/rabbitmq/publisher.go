package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"ddsloader/config"
)

// Publisher sends persistent JSON messages to the destination queue through the default exchange.
type Publisher struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	log       *zap.Logger
}

func NewPublisher(cfg config.RabbitMQConfig, log *zap.Logger) (*Publisher, error) {
	conn, channel, err := dial(cfg)
	if err != nil {
		return nil, err
	}

	if err := declare(channel, cfg.DestinationQueue); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:      conn,
		channel:   channel,
		queueName: cfg.DestinationQueue,
		log:       log.Named("rabbitmq.publisher").With(zap.String("queue", cfg.DestinationQueue)),
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, key string, body []byte) error {
	err := p.channel.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			// Partition key of the message, the user surrogate key.
			CorrelationId: key,
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message for %s: %w", key, err)
	}
	p.log.Debug("published message", zap.String("correlation_id", key))
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
