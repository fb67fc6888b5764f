// Package queue is the broker-neutral surface the worker consumes from and publishes to.
package queue

import (
	"context"
	"time"
)

// Delivery is one received record. It must be acknowledged only after it was fully handled;
// an unacknowledged delivery is redelivered by the broker.
type Delivery struct {
	Key  []byte
	Body []byte
	ack  func(ctx context.Context) error
}

func NewDelivery(key, body []byte, ack func(ctx context.Context) error) Delivery {
	return Delivery{Key: key, Body: body, ack: ack}
}

func (d Delivery) Ack(ctx context.Context) error {
	if d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}

type Consumer interface {
	// Receive waits at most wait for the next record. ok is false when none arrived in time.
	Receive(ctx context.Context, wait time.Duration) (d Delivery, ok bool, err error)
	Close() error
}

type Publisher interface {
	Publish(ctx context.Context, key string, body []byte) error
	Close() error
}
