package sched

import (
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
)

// dimension extracts one resource dimension from a Resources value.
type dimension func(Resources) int

var dimensions = [...]dimension{
	func(r Resources) int { return r.RAM },
	func(r Resources) int { return r.CPUCores },
	func(r Resources) int { return r.GPUCount },
}

// IndexedBackend keeps, for every resource dimension, an ordered map from
// dimension value to the bucket of ids holding exactly that value. TakeBest
// only walks the keys not larger than the available value, intersects the
// three candidate sets and then walks the priority index from the top until
// it meets a candidate.
//
// Insert and remove cost O(log k) per index, k being the number of distinct
// values in it; bucket removal is O(1).
type IndexedBackend struct {
	tasks    map[TaskID]*Task
	dims     [len(dimensions)]*treemap.Map // value (int) -> *bucket
	priority *redblacktree.Tree            // priority (int, descending) -> *bucket
}

// NewIndexedBackend creates an empty IndexedBackend.
func NewIndexedBackend() *IndexedBackend {
	b := &IndexedBackend{
		tasks:    make(map[TaskID]*Task),
		priority: redblacktree.NewWith(descending),
	}
	for i := range b.dims {
		b.dims[i] = treemap.NewWithIntComparator()
	}
	return b
}

// descending orders priorities from highest to lowest.
func descending(a, b interface{}) int {
	return utils.IntComparator(b, a)
}

func (b *IndexedBackend) Len() int { return len(b.tasks) }

func (b *IndexedBackend) Contains(id TaskID) bool {
	_, ok := b.tasks[id]
	return ok
}

func (b *IndexedBackend) Insert(t *Task) {
	b.tasks[t.ID] = t
	for i, dim := range dimensions {
		key := dim(t.Resources)
		bk, ok := b.dims[i].Get(key)
		if !ok {
			bk = newBucket()
			b.dims[i].Put(key, bk)
		}
		bk.(*bucket).add(t.ID)
	}

	bk, ok := b.priority.Get(t.Priority)
	if !ok {
		bk = newBucket()
		b.priority.Put(t.Priority, bk)
	}
	bk.(*bucket).add(t.ID)
}

func (b *IndexedBackend) TakeBest(avail Resources) (*Task, bool) {
	if len(b.tasks) == 0 {
		return nil, false
	}

	var sets [len(dimensions)]*hashset.Set
	for i, dim := range dimensions {
		sets[i] = collectUpTo(b.dims[i], dim(avail))
		if sets[i].Empty() {
			return nil, false
		}
	}

	candidates := intersect(sets[:])
	if candidates.Empty() {
		return nil, false
	}

	it := b.priority.Iterator()
	for it.Next() {
		for _, id := range it.Value().(*bucket).ids {
			if candidates.Contains(id) {
				t := b.tasks[id]
				b.remove(t)
				return t, true
			}
		}
	}
	return nil, false
}

// remove drops t from the primary map and from every index it appears in.
func (b *IndexedBackend) remove(t *Task) {
	delete(b.tasks, t.ID)
	for i, dim := range dimensions {
		key := dim(t.Resources)
		if bk, ok := b.dims[i].Get(key); ok {
			if bk.(*bucket).remove(t.ID) && bk.(*bucket).len() == 0 {
				b.dims[i].Remove(key)
			}
		}
	}
	if bk, ok := b.priority.Get(t.Priority); ok {
		if bk.(*bucket).remove(t.ID) && bk.(*bucket).len() == 0 {
			b.priority.Remove(t.Priority)
		}
	}
}

// collectUpTo returns the union of the buckets whose key is <= limit.
// Keys are visited in ascending order, so the walk stops at the first larger key.
func collectUpTo(index *treemap.Map, limit int) *hashset.Set {
	set := hashset.New()
	it := index.Iterator()
	for it.Next() {
		if it.Key().(int) > limit {
			break
		}
		for _, id := range it.Value().(*bucket).ids {
			set.Add(id)
		}
	}
	return set
}

// intersect returns the ids present in every set, scanning the smallest one.
func intersect(sets []*hashset.Set) *hashset.Set {
	sort.Slice(sets, func(i, j int) bool { return sets[i].Size() < sets[j].Size() })

	out := hashset.New()
	for _, id := range sets[0].Values() {
		in := true
		for _, other := range sets[1:] {
			if !other.Contains(id) {
				in = false
				break
			}
		}
		if in {
			out.Add(id)
		}
	}
	return out
}
