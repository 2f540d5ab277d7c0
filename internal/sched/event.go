package sched

import (
	"time"
)

// EventKind represents the type of queue or dispatcher event.
type EventKind int

const (
	EventIdle EventKind = iota
	EventEnqueue
	EventReject
	EventDispatch
	EventNoFit
	EventFinish
	EventFail
)

// Event is emitted on key queue and dispatcher actions.
type Event struct {
	Time      time.Time
	Kind      EventKind
	TaskID    TaskID
	Priority  int
	Resources Resources
	Err       error
}

func (k EventKind) String() string {
	switch k {
	case EventIdle:
		return "Idle"
	case EventEnqueue:
		return "Enqueued"
	case EventReject:
		return "Rejected"
	case EventDispatch:
		return "Dispatch"
	case EventNoFit:
		return "NoFit"
	case EventFinish:
		return "Finish"
	case EventFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// NewTaskEvent builds an event describing t.
func NewTaskEvent(kind EventKind, t *Task) Event {
	return Event{
		Time:      time.Now(),
		Kind:      kind,
		TaskID:    t.ID,
		Priority:  t.Priority,
		Resources: t.Resources,
	}
}
