package scheduler

import "vcompress/internal/job"

// EventType classifies scheduler events.
type EventType int

const (
	EventQueued EventType = iota
	EventStarted
	EventProgress
	EventRetrying
	EventCompleted
	EventFailed
)

func (t EventType) String() string {
	switch t {
	case EventQueued:
		return "queued"
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventRetrying:
		return "retrying"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the event ends its job.
func (t EventType) Terminal() bool {
	return t == EventCompleted || t == EventFailed
}

// Event is one observation published by the scheduler. Job is a snapshot
// taken when the event was emitted; Completed and Total are the aggregate
// counters at the same moment.
type Event struct {
	Type      EventType
	Job       job.Snapshot
	Completed int
	Total     int
}
