package clickhouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"ddsloader/config"
	"ddsloader/internal/journal"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

var _ journal.Recorder = (*Client)(nil)

// Client writes batch start/stop markers to the run journal table.
type Client struct {
	conn     driver.Conn
	database string
}

func NewClient(cfg config.ClickHouseConfig) (*Client, error) {
	opts := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		DialTimeout:  time.Second * 30,
	}

	// Only use TLS on the secure native port
	if cfg.Port == 9440 {
		opts.TLS = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Client{
		conn:     conn,
		database: cfg.Database,
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// EnsureJournal creates the run journal table when it is missing.
func (c *Client) EnsureJournal(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.dds_loader_runs (
			run_id     UUID,
			marker     LowCardinality(String),
			accepted   UInt32,
			skipped    UInt32,
			status     LowCardinality(String),
			error      String,
			event_time DateTime64(3, 'UTC')
		) ENGINE = MergeTree
		ORDER BY (event_time, run_id)
	`, c.database)

	if err := c.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create run journal: %w", err)
	}
	return nil
}

// RecordRun inserts one journal row for a batch marker.
func (c *Client) RecordRun(ctx context.Context, m journal.RunMarker) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.dds_loader_runs (
			run_id, marker, accepted, skipped, status, error, event_time
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.database)

	if err := c.conn.Exec(ctx, query,
		m.RunID.String(),
		string(m.Marker),
		uint32(m.Accepted),
		uint32(m.Skipped),
		m.Status,
		m.Error,
		m.At,
	); err != nil {
		return fmt.Errorf("failed to record run marker: %w", err)
	}
	return nil
}
