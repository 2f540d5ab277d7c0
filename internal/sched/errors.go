package sched

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned by Add when a task with the same id is
	// already resident.
	ErrDuplicateID = errors.New("sched: duplicate task id")
	// ErrNilTask is returned by Add when given a nil task.
	ErrNilTask = errors.New("sched: nil task")
	// ErrUnknownBackend is returned for a backend kind other than linear or indexed.
	ErrUnknownBackend = errors.New("sched: unknown backend")
)

// DuplicateIDError carries the id that was rejected. It matches ErrDuplicateID
// under errors.Is.
type DuplicateIDError struct {
	ID TaskID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("sched: duplicate task id %d", e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }
