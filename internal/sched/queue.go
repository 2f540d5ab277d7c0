package sched

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"
)

// TaskQueue is the public face of a Backend. It owns the unique id invariant
// and serializes every operation behind a single mutex.
type TaskQueue struct {
	mu      sync.Mutex   // protects backend
	backend Backend      // fixed for the lifetime of the queue
	events  chan<- Event // optional, sends never block
	metrics *Metrics
	log     log.FieldLogger
}

// Option configures a TaskQueue.
type Option func(*TaskQueue)

// WithLogger sets the logger used for queue diagnostics.
func WithLogger(l log.FieldLogger) Option {
	return func(q *TaskQueue) { q.log = l }
}

// WithMetrics reports queue metrics under the given scope.
func WithMetrics(scope tally.Scope) Option {
	return func(q *TaskQueue) { q.metrics = NewMetrics(scope) }
}

// WithEvents makes the queue publish Enqueue, Reject, Dispatch and NoFit
// events on ch. Events are dropped when ch is full.
func WithEvents(ch chan<- Event) Option {
	return func(q *TaskQueue) { q.events = ch }
}

// New creates a TaskQueue over a LinearBackend.
func New(opts ...Option) *TaskQueue {
	return NewWithBackend(NewLinearBackend(), opts...)
}

// NewWithBackend creates a TaskQueue over b. The queue takes ownership of b.
func NewWithBackend(b Backend, opts ...Option) *TaskQueue {
	q := &TaskQueue{
		backend: b,
		metrics: NewMetrics(tally.NoopScope),
		log:     log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// NewFromConfig creates a TaskQueue over the backend named in cfg.
func NewFromConfig(cfg Config, opts ...Option) (*TaskQueue, error) {
	kind, err := ParseBackendKind(cfg.Backend)
	if err != nil {
		return nil, err
	}
	b, err := NewBackend(kind)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(b, opts...), nil
}

// Len returns the number of resident tasks.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.backend.Len()
}

// Add enqueues t. It fails with a *DuplicateIDError, leaving the queue
// unchanged, when a task with the same id is already resident.
func (q *TaskQueue) Add(t *Task) error {
	if t == nil {
		return ErrNilTask
	}

	q.mu.Lock()
	if q.backend.Contains(t.ID) {
		q.mu.Unlock()
		q.metrics.DuplicateRejected.Inc(1)
		q.log.WithFields(log.Fields{
			"task_id":  t.ID,
			"priority": t.Priority,
		}).Debug("rejecting task with resident id")
		q.emit(NewTaskEvent(EventReject, t))
		return &DuplicateIDError{ID: t.ID}
	}
	q.backend.Insert(t)
	n := q.backend.Len()
	q.mu.Unlock()

	q.metrics.Enqueued.Inc(1)
	q.metrics.Resident.Update(float64(n))
	q.emit(NewTaskEvent(EventEnqueue, t))
	return nil
}

// TakeBest removes and returns the highest priority resident task that fits
// within avail. It returns false when no resident task fits; that is not an
// error.
func (q *TaskQueue) TakeBest(avail Resources) (*Task, bool) {
	q.mu.Lock()
	t, ok := q.backend.TakeBest(avail)
	n := q.backend.Len()
	q.mu.Unlock()

	if !ok {
		q.metrics.NoFit.Inc(1)
		q.emit(Event{Time: time.Now(), Kind: EventNoFit, Resources: avail})
		return nil, false
	}

	q.metrics.Dispatched.Inc(1)
	q.metrics.Resident.Update(float64(n))
	q.emit(NewTaskEvent(EventDispatch, t))
	return t, true
}

func (q *TaskQueue) emit(ev Event) {
	if q.events == nil {
		return
	}
	select {
	case q.events <- ev:
	default:
	}
}
