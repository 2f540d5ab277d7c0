package sched

import (
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/hashset"
)

// LinearBackend keeps resident tasks in insertion order and sorts them by
// priority on every TakeBest. Selection is O(n log n), Contains is O(1).
type LinearBackend struct {
	tasks *arraylist.List // unordered resident tasks (*Task)
	ids   *hashset.Set    // resident ids (TaskID)
}

// NewLinearBackend creates an empty LinearBackend.
func NewLinearBackend() *LinearBackend {
	return &LinearBackend{
		tasks: arraylist.New(),
		ids:   hashset.New(),
	}
}

func (b *LinearBackend) Len() int { return b.tasks.Size() }

func (b *LinearBackend) Contains(id TaskID) bool { return b.ids.Contains(id) }

func (b *LinearBackend) Insert(t *Task) {
	b.tasks.Add(t)
	b.ids.Add(t.ID)
}

func (b *LinearBackend) TakeBest(avail Resources) (*Task, bool) {
	if b.tasks.Empty() {
		return nil, false
	}

	// Values returns a copy, so the resident order is left untouched.
	ordered := b.tasks.Values()
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].(*Task).Priority > ordered[j].(*Task).Priority
	})

	for _, v := range ordered {
		t := v.(*Task)
		if !t.Resources.FitsWithin(avail) {
			continue
		}
		b.tasks.Remove(b.tasks.IndexOf(t))
		b.ids.Remove(t.ID)
		return t, true
	}
	return nil, false
}
