// Package journal describes the start/stop markers a batch run emits to its observability sink.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Marker string

const (
	MarkerStart Marker = "start"
	MarkerStop  Marker = "stop"
)

// Batch statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RunMarker is one start or stop record of a batch run.
type RunMarker struct {
	RunID    uuid.UUID
	Marker   Marker
	Accepted int
	Skipped  int
	Status   string
	Error    string
	At       time.Time
}

// Recorder is the observability sink for batch markers.
type Recorder interface {
	RecordRun(ctx context.Context, m RunMarker) error
}
