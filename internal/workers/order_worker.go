package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ddsloader/config"
	"ddsloader/internal/journal"
	"ddsloader/internal/metrics"
	"ddsloader/internal/queue"
	"ddsloader/internal/vault"
	"ddsloader/models"
)

// Store is the persistence the worker needs: idempotent vault writes, the counter
// queries and an optional transaction scope.
type Store interface {
	vault.Writer
	vault.Counters
	Transaction(ctx context.Context, fn func(w vault.Writer) error) error
}

type OrderWorker struct {
	cfg      config.LoaderConfig
	consumer queue.Consumer
	store    Store
	counters *CounterPublisher
	recorder journal.Recorder
	log      *zap.Logger
	now      func() time.Time
}

// NewOrderWorker wires one worker instance. recorder may be nil.
func NewOrderWorker(cfg config.LoaderConfig, consumer queue.Consumer, publisher queue.Publisher, store Store, recorder journal.Recorder, log *zap.Logger) *OrderWorker {
	log = log.Named("order_worker")
	return &OrderWorker{
		cfg:      cfg,
		consumer: consumer,
		store:    store,
		counters: NewCounterPublisher(publisher, cfg.PublishEmptyCounters, log),
		recorder: recorder,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// BatchResult summarizes one RunBatch call.
type BatchResult struct {
	RunID    uuid.UUID
	Accepted int
	Skipped  int
	// Drained is true when the batch ended on an empty poll rather than the quota.
	Drained bool
}

// Start runs a batch immediately and then every Interval until ctx is cancelled.
// A batch that filled its quota is followed by the next one without waiting.
func (w *OrderWorker) Start(ctx context.Context) error {
	w.log.Info("starting order worker",
		zap.Int("batch_size", w.cfg.BatchSize),
		zap.Duration("interval", w.cfg.Interval),
		zap.Bool("transactional", w.cfg.Transactional))

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		res, err := w.RunBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		next := w.cfg.Interval
		if !res.Drained {
			next = 0
		}
		timer.Reset(next)
	}
}

// RunBatch consumes records until BatchSize events were accepted or a poll returns nothing.
// Skipped records are acknowledged but do not count toward the quota. The first failed
// event stops the batch and stays unacknowledged so the broker redelivers it.
func (w *OrderWorker) RunBatch(ctx context.Context) (BatchResult, error) {
	res := BatchResult{RunID: uuid.New()}
	log := w.log.With(zap.String("run_id", res.RunID.String()))

	w.mark(ctx, journal.RunMarker{RunID: res.RunID, Marker: journal.MarkerStart, Status: journal.StatusOK})
	log.Info("batch started")

	err := w.drain(ctx, &res)

	stop := journal.RunMarker{
		RunID:    res.RunID,
		Marker:   journal.MarkerStop,
		Accepted: res.Accepted,
		Skipped:  res.Skipped,
		Status:   journal.StatusOK,
	}
	if err != nil {
		stop.Status = journal.StatusFailed
		stop.Error = err.Error()
	}
	w.mark(ctx, stop)
	metrics.BatchesTotal.WithLabelValues(stop.Status).Inc()

	if err != nil {
		log.Error("batch failed",
			zap.Int("accepted", res.Accepted),
			zap.Int("skipped", res.Skipped),
			zap.Error(err))
		return res, err
	}
	log.Info("batch finished",
		zap.Int("accepted", res.Accepted),
		zap.Int("skipped", res.Skipped),
		zap.Bool("drained", res.Drained))
	return res, nil
}

func (w *OrderWorker) drain(ctx context.Context, res *BatchResult) error {
	for res.Accepted < w.cfg.BatchSize {
		d, ok, err := w.consumer.Receive(ctx, w.cfg.PollTimeout)
		if err != nil {
			return fmt.Errorf("failed to receive record: %w", err)
		}
		if !ok {
			res.Drained = true
			return nil
		}

		accepted, err := w.handleMessage(ctx, d.Body)
		if err != nil {
			return err
		}
		if err := d.Ack(ctx); err != nil {
			return fmt.Errorf("failed to acknowledge record: %w", err)
		}
		if accepted {
			res.Accepted++
		} else {
			res.Skipped++
		}
	}
	return nil
}

// handleMessage classifies one record. It reports accepted=false for records that are
// skipped and an error only when an accepted event failed.
func (w *OrderWorker) handleMessage(ctx context.Context, body []byte) (bool, error) {
	env, err := models.DecodeEnvelope(body)
	if err != nil {
		w.skip("undecodable", err)
		return false, nil
	}

	switch env.Kind() {
	case models.KindOrder:
		order, err := env.Order()
		if err != nil {
			w.skip("malformed_order", err, zap.String("object_id", env.ObjectID.String()))
			return false, nil
		}
		if err := w.processOrder(ctx, order); err != nil {
			metrics.EventsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			return false, err
		}
		metrics.EventsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
		return true, nil
	case models.KindUnknown:
		w.skip("unknown_kind", models.ErrUnknownKind, zap.String("object_type", *env.ObjectType))
		return false, nil
	default:
		w.skip("unknown_kind", models.ErrUnknownKind, zap.Stringer("kind", env.Kind()))
		return false, nil
	}
}

func (w *OrderWorker) skip(reason string, err error, fields ...zap.Field) {
	metrics.EventsTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
	metrics.SkippedTotal.WithLabelValues(reason).Inc()

	lvl := zap.WarnLevel
	if errors.Is(err, models.ErrUnknownKind) {
		lvl = zap.DebugLevel
	}
	w.log.Log(lvl, "skipping record", append(fields, zap.String("reason", reason), zap.Error(err))...)
}

// mark writes a journal marker. Journal failures are logged and never fail the batch.
func (w *OrderWorker) mark(ctx context.Context, m journal.RunMarker) {
	if w.recorder == nil {
		return
	}
	m.At = w.now()
	if err := w.recorder.RecordRun(ctx, m); err != nil {
		w.log.Warn("failed to record run marker",
			zap.String("run_id", m.RunID.String()),
			zap.String("marker", string(m.Marker)),
			zap.Error(err))
	}
}
