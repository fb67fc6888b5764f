package workers

import "fmt"

// Stage is a step of the per-event state machine:
// RECEIVED -> FILTERED -> HUBS_WRITTEN -> LINKS_WRITTEN -> AGGREGATED -> PUBLISHED, or FAILED.
type Stage int

const (
	StageReceived Stage = iota
	StageFiltered
	StageHubsWritten
	StageLinksWritten
	StageAggregated
	StagePublished
	StageFailed
)

var stageNames = [...]string{
	StageReceived:     "RECEIVED",
	StageFiltered:     "FILTERED",
	StageHubsWritten:  "HUBS_WRITTEN",
	StageLinksWritten: "LINKS_WRITTEN",
	StageAggregated:   "AGGREGATED",
	StagePublished:    "PUBLISHED",
	StageFailed:       "FAILED",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// EventError reports the transition an accepted event failed to make. The event is FAILED
// and the batch stops; writes applied before the failure are not rolled back unless the
// worker runs in transactional mode.
type EventError struct {
	OrderID string
	Stage   Stage
	Err     error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("order %s failed before %s: %v", e.OrderID, e.Stage, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}
