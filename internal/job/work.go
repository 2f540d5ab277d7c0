package job

import (
	"context"
	"fmt"
	"time"

	"fitq/internal/sched"
)

// SleepWork returns a runner that sleeps for the given duration and then
// reports how long it slept. It stops early with ctx.Err() on cancellation.
func SleepWork(ms int64) func(context.Context, *sched.Task) (string, error) {
	d := time.Duration(ms) * time.Millisecond
	return func(ctx context.Context, t *sched.Task) (string, error) {
		if err := sleep(ctx, d); err != nil {
			return "", err
		}
		return fmt.Sprintf("slept %s", d), nil
	}
}

// EchoWork returns the task content as its result.
func EchoWork(_ context.Context, t *sched.Task) (string, error) {
	return t.Content, nil
}

// Plan maps task ids onto how long each task runs. Tasks missing from the
// plan finish immediately.
type Plan map[sched.TaskID]time.Duration

// Runner returns a runner that sleeps for the planned duration of each task
// and then echoes its content.
func (p Plan) Runner() func(context.Context, *sched.Task) (string, error) {
	return func(ctx context.Context, t *sched.Task) (string, error) {
		if err := sleep(ctx, p[t.ID]); err != nil {
			return "", err
		}
		return EchoWork(ctx, t)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		// If the time is up, we just return nil.
		return nil
	}
}
