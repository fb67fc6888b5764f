package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ddsloader/config"
	"ddsloader/internal/clickhouse"
	"ddsloader/internal/journal"
	"ddsloader/internal/kafka"
	"ddsloader/internal/postgres"
	"ddsloader/internal/queue"
	"ddsloader/internal/rabbitmq"
	"ddsloader/internal/vault"
	"ddsloader/internal/workers"
	"ddsloader/pkg/logger"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred Close calls run before exiting.
func run() int {
	// Used until the configured logger exists.
	bootLog := zap.NewExample()

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog.Error("failed to load config", zap.Error(err))
		return 1
	}
	if err := cfg.Validate(); err != nil {
		bootLog.Error("invalid configuration", zap.Error(err))
		return 1
	}

	log, err := logger.Init(cfg.Log)
	if err != nil {
		bootLog.Error("failed to build logger", zap.Error(err))
		return 1
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting dds loader",
		zap.String("broker", cfg.Loader.Broker),
		zap.Int("batch_size", cfg.Loader.BatchSize),
		zap.Duration("interval", cfg.Loader.Interval),
		zap.String("postgres", cfg.Postgres.Host),
		zap.Bool("journal", cfg.ClickHouse.Enabled()))

	pgClient, err := postgres.NewClient(cfg.Postgres, log)
	if err != nil {
		log.Error("failed to connect to postgres", zap.Error(err))
		return 1
	}
	defer pgClient.Close()
	log.Info("connected to postgres")

	consumer, publisher, err := openBroker(cfg, log)
	if err != nil {
		log.Error("failed to connect to broker", zap.String("broker", cfg.Loader.Broker), zap.Error(err))
		return 1
	}
	defer consumer.Close()
	defer publisher.Close()
	log.Info("connected to broker", zap.String("broker", cfg.Loader.Broker))

	var recorder journal.Recorder
	if cfg.ClickHouse.Enabled() {
		chClient, err := clickhouse.NewClient(cfg.ClickHouse)
		if err != nil {
			log.Error("failed to connect to clickhouse", zap.Error(err))
			return 1
		}
		defer chClient.Close()
		if err := chClient.EnsureJournal(context.Background()); err != nil {
			log.Error("failed to prepare run journal", zap.Error(err))
			return 1
		}
		recorder = chClient
		log.Info("connected to clickhouse")
	}

	metricsServer := serveMetrics(cfg.Metrics.Addr, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := workers.NewOrderWorker(cfg.Loader, consumer, publisher, vault.NewRepository(pgClient.DB()), recorder, log)
	runErr := worker.Start(ctx)

	log.Info("shutting down")
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	if runErr != nil {
		log.Error("worker stopped", zap.Error(runErr))
		return 1
	}
	log.Info("worker stopped gracefully")
	return 0
}

func openBroker(cfg *config.Config, log *zap.Logger) (queue.Consumer, queue.Publisher, error) {
	switch cfg.Loader.Broker {
	case config.BrokerRabbitMQ:
		consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQ, log)
		if err != nil {
			return nil, nil, err
		}
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ, log)
		if err != nil {
			_ = consumer.Close()
			return nil, nil, err
		}
		return consumer, publisher, nil
	default:
		consumer, err := kafka.NewConsumer(cfg.Kafka, log)
		if err != nil {
			return nil, nil, err
		}
		producer, err := kafka.NewProducer(cfg.Kafka, log)
		if err != nil {
			_ = consumer.Close()
			return nil, nil, err
		}
		return consumer, producer, nil
	}
}

// serveMetrics returns nil when addr is empty.
func serveMetrics(addr string, log *zap.Logger) *http.Server {
	if addr == "" {
		log.Info("metrics endpoint disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
