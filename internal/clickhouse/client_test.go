package clickhouse

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddsloader/config"
	"ddsloader/internal/journal"
)

// Runs only against a live server: CLICKHOUSE_TEST_HOST=localhost go test ./internal/clickhouse
func TestRecordRun(t *testing.T) {
	host := os.Getenv("CLICKHOUSE_TEST_HOST")
	if testing.Short() || host == "" {
		t.Skip("Skipping ClickHouse journal test without CLICKHOUSE_TEST_HOST")
	}
	port, err := strconv.Atoi(os.Getenv("CLICKHOUSE_TEST_PORT"))
	if err != nil {
		port = 9000
	}

	client, err := NewClient(config.ClickHouseConfig{
		Host:     host,
		Port:     port,
		Database: "default",
		Username: "default",
		Password: os.Getenv("CLICKHOUSE_TEST_PASSWORD"),
	})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.EnsureJournal(ctx))

	runID := uuid.New()
	at := time.Now().UTC()
	require.NoError(t, client.RecordRun(ctx, journal.RunMarker{RunID: runID, Marker: journal.MarkerStart, Status: journal.StatusOK, At: at}))
	require.NoError(t, client.RecordRun(ctx, journal.RunMarker{
		RunID:    runID,
		Marker:   journal.MarkerStop,
		Accepted: 3,
		Skipped:  1,
		Status:   journal.StatusOK,
		At:       at.Add(time.Second),
	}))

	var accepted uint32
	row := client.conn.QueryRow(ctx,
		`SELECT accepted FROM default.dds_loader_runs WHERE run_id = ? AND marker = 'stop'`, runID.String())
	require.NoError(t, row.Scan(&accepted))
	assert.Equal(t, uint32(3), accepted)
}
