package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestServeMetricsDisabledWithoutAddr(t *testing.T) {
	assert.Nil(t, serveMetrics("", zaptest.NewLogger(t)))
}

func TestServeMetricsExposesRegistry(t *testing.T) {
	srv := serveMetrics("127.0.0.1:19102", zaptest.NewLogger(t))
	require.NotNil(t, srv)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:19102/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRunReturnsExitCodeOnInvalidConfig(t *testing.T) {
	t.Setenv("LOADER_BATCH_SIZE", "0")
	assert.Equal(t, 1, run())
}

func TestRunReturnsExitCodeOnBadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	assert.Equal(t, 1, run())
}
