package sched

import (
	"github.com/uber-go/tally/v4"
)

// Metrics is the set of metrics reported by a TaskQueue.
type Metrics struct {
	Enqueued          tally.Counter
	DuplicateRejected tally.Counter
	Dispatched        tally.Counter
	NoFit             tally.Counter

	Resident tally.Gauge
}

// NewMetrics returns a new instance of sched.Metrics.
func NewMetrics(scope tally.Scope) *Metrics {
	queueScope := scope.SubScope("queue")
	failScope := queueScope.Tagged(map[string]string{"type": "fail"})

	return &Metrics{
		Enqueued:          queueScope.Counter("enqueued"),
		DuplicateRejected: failScope.Counter("duplicate_id"),
		Dispatched:        queueScope.Counter("dispatched"),
		NoFit:             queueScope.Counter("no_fit"),

		Resident: queueScope.Gauge("resident"),
	}
}
