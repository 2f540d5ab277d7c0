package dispatch

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"
	"go.uber.org/atomic"

	"fitq/internal/sched"
)

// Runner executes a dispatched task. The returned string becomes the task's
// Result when err is nil.
type Runner func(ctx context.Context, t *sched.Task) (string, error)

// Dispatcher polls a TaskQueue on every clock tick and starts every task
// that fits the capacity left over by the tasks already running. Capacity
// taken by a task is handed back when its Runner returns.
type Dispatcher struct {
	// dispatch-related
	mu        sync.Mutex      // protects available, completed and failed
	q         *sched.TaskQueue
	capacity  sched.Resources // total capacity, never changes
	available sched.Resources // capacity not held by running tasks
	run       Runner
	interval  time.Duration
	drain     bool // stop once the queue is empty and nothing runs
	clock     *TickClock
	inflight  atomic.Int64
	wg        sync.WaitGroup
	statusCh  chan sched.Event
	completed []*sched.Task
	failed    []*sched.Task

	// logging-related
	metrics   *Metrics
	log       log.FieldLogger
	csvFile   *os.File
	csvWriter *csv.Writer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTickInterval sets how often the queue is polled.
func WithTickInterval(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.interval = d
		}
	}
}

// WithStopWhenDrained makes Run return once the queue is empty and every
// dispatched task has finished.
func WithStopWhenDrained() Option {
	return func(d *Dispatcher) { d.drain = true }
}

// WithLogger sets the logger events are written to.
func WithLogger(l log.FieldLogger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithMetrics reports dispatcher metrics under the given scope.
func WithMetrics(scope tally.Scope) Option {
	return func(d *Dispatcher) { d.metrics = NewMetrics(scope) }
}

// New creates a Dispatcher draining q with the given total capacity.
func New(q *sched.TaskQueue, capacity sched.Resources, run Runner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		q:         q,
		capacity:  capacity,
		available: capacity,
		run:       run,
		interval:  5 * time.Millisecond,
		statusCh:  make(chan sched.Event, 256), // buffered channel for status events
		metrics:   NewMetrics(tally.NoopScope),
		log:       log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EnableCSVLogging opens the given file path for CSV logging of events.
// Must be called before Run().
func (d *Dispatcher) EnableCSVLogging(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create event log %s", path)
	}
	w := csv.NewWriter(f)

	// write header
	w.Write([]string{"timestamp", "tick", "event", "task_id", "priority", "ram", "cpu_cores", "gpu_count", "error"})
	w.Flush()
	d.csvFile = f
	d.csvWriter = w
	return nil
}

// Submit enqueues t. Tasks that could never fit the total capacity are
// rejected with ErrTaskTooLarge.
func (d *Dispatcher) Submit(t *sched.Task) error {
	if t == nil {
		return sched.ErrNilTask
	}
	if !t.Resources.FitsWithin(d.capacity) {
		d.metrics.Rejected.Inc(1)
		return errors.Wrapf(ErrTaskTooLarge, "task %d needs %s, capacity is %s",
			t.ID, t.Resources, d.capacity)
	}
	if err := d.q.Add(t); err != nil {
		d.metrics.Rejected.Inc(1)
		return err
	}
	return nil
}

// Available returns the capacity not held by running tasks.
func (d *Dispatcher) Available() sched.Resources {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.available
}

// Completed returns the tasks whose Runner succeeded, in completion order.
func (d *Dispatcher) Completed() []*sched.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*sched.Task(nil), d.completed...)
}

// Failed returns the tasks whose Runner returned an error.
func (d *Dispatcher) Failed() []*sched.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*sched.Task(nil), d.failed...)
}

// Run dispatches tasks until ctx is done (or the queue drains, see
// WithStopWhenDrained) and then waits for running tasks to return.
// Run must be called at most once.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.clock = NewTickClock(256) // buffer size for tick events
	d.clock.Start(d.interval)

	// consume events
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range d.statusCh {
			d.handleEvent(ev)
		}
	}()

	d.loop(ctx)

	// stop the underlying clock to release its goroutine, then let the
	// running tasks hand their capacity back before closing the stream
	d.clock.Stop()
	d.wg.Wait()
	close(d.statusCh)
	<-done

	if d.csvFile != nil {
		d.csvWriter.Flush()
		if err := d.csvFile.Close(); err != nil {
			return errors.Wrap(err, "failed to close event log")
		}
	}
	return nil
}

// loop runs the main dispatch loop, once per tick.
func (d *Dispatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-d.clock.Ch:
			if !ok {
				return
			}
		}

		// a buffered tick may win the select after cancellation
		if ctx.Err() != nil {
			return
		}

		if d.dispatchReady(ctx) == 0 {
			d.statusCh <- sched.Event{Time: time.Now(), Kind: sched.EventIdle}
		}

		if d.drain && d.q.Len() == 0 && d.inflight.Load() == 0 {
			return
		}
	}
}

// dispatchReady takes tasks off the queue until nothing fits the capacity
// still available, starting a goroutine per task. It returns the number of
// tasks started.
func (d *Dispatcher) dispatchReady(ctx context.Context) int {
	started := 0
	for {
		if ctx.Err() != nil {
			return started
		}

		d.mu.Lock()
		t, ok := d.q.TakeBest(d.available)
		if !ok {
			d.mu.Unlock()
			return started
		}
		d.available = d.available.Subtract(t.Resources)
		d.mu.Unlock()

		d.inflight.Inc()
		d.wg.Add(1)
		started++
		d.metrics.Dispatched.Inc(1)
		d.metrics.InFlight.Update(float64(d.inflight.Load()))
		d.statusCh <- sched.NewTaskEvent(sched.EventDispatch, t)

		go d.execute(ctx, t)
	}
}

// execute runs t and returns its capacity. The outcome event is sent before
// the capacity is handed back, so it precedes any dispatch that reuses it.
func (d *Dispatcher) execute(ctx context.Context, t *sched.Task) {
	defer d.wg.Done()

	// cancelled between TakeBest and here: the task never ran, keep it resident
	if ctx.Err() != nil {
		d.requeue(t)
		return
	}

	sw := d.metrics.RunTime.Start()
	result, err := d.run(ctx, t)
	sw.Stop()

	ev := sched.NewTaskEvent(sched.EventFinish, t)
	if err != nil {
		ev.Kind = sched.EventFail
		ev.Err = err
		d.metrics.Failed.Inc(1)
	} else {
		t.Result = result
		d.metrics.Finished.Inc(1)
	}
	d.statusCh <- ev

	d.mu.Lock()
	d.available = d.available.Add(t.Resources)
	if err == nil {
		d.completed = append(d.completed, t)
	} else {
		d.failed = append(d.failed, t)
	}
	d.mu.Unlock()

	d.metrics.InFlight.Update(float64(d.inflight.Dec()))
}

// requeue puts back a task that was taken but never started and returns its
// capacity.
func (d *Dispatcher) requeue(t *sched.Task) {
	err := d.q.Add(t)

	d.mu.Lock()
	d.available = d.available.Add(t.Resources)
	if err != nil {
		d.failed = append(d.failed, t)
	}
	d.mu.Unlock()
	d.metrics.InFlight.Update(float64(d.inflight.Dec()))

	if err != nil {
		d.metrics.Failed.Inc(1)
		ev := sched.NewTaskEvent(sched.EventFail, t)
		ev.Err = err
		d.statusCh <- ev
		return
	}
	d.log.WithField("task_id", t.ID).Debug("Requeued task dispatched after cancellation")
}

func (d *Dispatcher) handleEvent(ev sched.Event) {
	// idle ticks occur periodically, skip them for the brevity of output
	if ev.Kind == sched.EventIdle {
		return
	}

	entry := d.log.WithFields(log.Fields{
		"tick":      d.clock.Count(),
		"task_id":   ev.TaskID,
		"priority":  ev.Priority,
		"resources": ev.Resources.String(),
	})
	if ev.Err != nil {
		entry.WithError(ev.Err).Warn(ev.Kind.String())
	} else {
		entry.Info(ev.Kind.String())
	}

	// CSV output
	if d.csvWriter != nil {
		errText := ""
		if ev.Err != nil {
			errText = ev.Err.Error()
		}
		rec := []string{
			ev.Time.Format(time.RFC3339Nano),
			strconv.FormatInt(d.clock.Count(), 10),
			ev.Kind.String(),
			strconv.FormatUint(uint64(ev.TaskID), 10),
			strconv.Itoa(ev.Priority),
			strconv.Itoa(ev.Resources.RAM),
			strconv.Itoa(ev.Resources.CPUCores),
			strconv.Itoa(ev.Resources.GPUCount),
			errText,
		}
		d.csvWriter.Write(rec)
		d.csvWriter.Flush()
	}
}
