package dispatch

import (
	"github.com/uber-go/tally/v4"
)

// Metrics is the set of metrics reported by a Dispatcher.
type Metrics struct {
	Dispatched tally.Counter
	Finished   tally.Counter
	Failed     tally.Counter
	Rejected   tally.Counter

	InFlight tally.Gauge
	RunTime  tally.Timer
}

// NewMetrics returns a new instance of dispatch.Metrics.
func NewMetrics(scope tally.Scope) *Metrics {
	dispatchScope := scope.SubScope("dispatcher")
	successScope := dispatchScope.Tagged(map[string]string{"type": "success"})
	failScope := dispatchScope.Tagged(map[string]string{"type": "fail"})

	return &Metrics{
		Dispatched: dispatchScope.Counter("dispatched"),
		Finished:   successScope.Counter("run"),
		Failed:     failScope.Counter("run"),
		Rejected:   failScope.Counter("submit"),

		InFlight: dispatchScope.Gauge("in_flight"),
		RunTime:  dispatchScope.Timer("run_time"),
	}
}
