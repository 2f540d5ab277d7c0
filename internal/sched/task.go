package sched

// TaskID uniquely identifies a task among the tasks resident in a queue.
type TaskID uint64

// Task represents one unit of pending work.
//
// Priority and Resources must not change while the task is resident in a
// TaskQueue: both backends index on them.
type Task struct {
	ID        TaskID
	Priority  int       // higher is more urgent, negative values are valid
	Resources Resources // capacity the task needs to be dispatched
	Content   string    // opaque payload, never inspected by the queue
	Result    string    // opaque result, filled in by whoever runs the task
}

// NewTask creates a new task with an empty result.
func NewTask(id TaskID, priority int, res Resources, content string) *Task {
	return &Task{
		ID:        id,
		Priority:  priority,
		Resources: res,
		Content:   content,
	}
}
