package sched

import (
	"strings"

	"github.com/pkg/errors"
)

// Backend stores resident tasks and performs best-fit selection.
// Backends do not enforce id uniqueness; TaskQueue does that before Insert.
// Backends are not safe for concurrent use on their own.
type Backend interface {
	// Len returns the number of resident tasks.
	Len() int
	// Contains reports whether a task with the given id is resident.
	Contains(id TaskID) bool
	// Insert adds the task unconditionally.
	Insert(t *Task)
	// TakeBest removes and returns the highest priority task whose resources
	// fit within avail. It returns false and leaves the backend unchanged
	// when nothing fits.
	TakeBest(avail Resources) (*Task, bool)
}

// BackendKind names a Backend implementation.
type BackendKind string

const (
	// BackendLinear sorts the resident tasks on every selection.
	BackendLinear BackendKind = "linear"
	// BackendIndexed keeps per dimension indices to narrow candidates.
	BackendIndexed BackendKind = "indexed"
)

// ParseBackendKind maps a config string onto a BackendKind. Matching is case
// insensitive and the empty string selects the linear backend.
func ParseBackendKind(s string) (BackendKind, error) {
	switch BackendKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendLinear:
		return BackendLinear, nil
	case BackendIndexed:
		return BackendIndexed, nil
	default:
		return "", errors.Wrapf(ErrUnknownBackend, "%q", s)
	}
}

// NewBackend is the factory for the known backend kinds.
func NewBackend(kind BackendKind) (Backend, error) {
	switch kind {
	case "", BackendLinear:
		return NewLinearBackend(), nil
	case BackendIndexed:
		return NewIndexedBackend(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", kind)
	}
}
