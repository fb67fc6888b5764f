package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ddsloader/internal/metrics"
	"ddsloader/internal/queue"
	"ddsloader/models"
)

// CounterPublisher wraps aggregation results in envelopes and sends one message per kind.
type CounterPublisher struct {
	publisher    queue.Publisher
	publishEmpty bool
	log          *zap.Logger
}

func NewCounterPublisher(publisher queue.Publisher, publishEmpty bool, log *zap.Logger) *CounterPublisher {
	return &CounterPublisher{
		publisher:    publisher,
		publishEmpty: publishEmpty,
		log:          log.Named("publisher"),
	}
}

func (p *CounterPublisher) PublishProductCounters(ctx context.Context, user uuid.UUID, rows []models.UserProductCounter) error {
	return publishCounters(ctx, p, user, models.ObjectTypeUserProductCounters, rows)
}

func (p *CounterPublisher) PublishCategoryCounters(ctx context.Context, user uuid.UUID, rows []models.UserCategoryCounter) error {
	return publishCounters(ctx, p, user, models.ObjectTypeUserCategoryCounter, rows)
}

// publishCounters keys the message by user so one user's counters stay in order on a partition.
func publishCounters[T any](ctx context.Context, p *CounterPublisher, user uuid.UUID, kind string, rows []T) error {
	if len(rows) == 0 && !p.publishEmpty {
		p.log.Debug("skipping empty counters", zap.String("kind", kind))
		return nil
	}

	env := models.NewCounterEnvelope(kind, rows)
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	if err := p.publisher.Publish(ctx, user.String(), body); err != nil {
		return err
	}

	metrics.MessagesPublished.WithLabelValues(kind).Inc()
	p.log.Debug("published counters",
		zap.String("kind", kind),
		zap.String("object_id", env.ObjectID),
		zap.Int("rows", len(rows)))
	return nil
}
