package sched

// bucket is an ordered set of task ids with O(1) add, remove and membership.
// Removal swaps the last id into the freed slot, so order is only stable
// until the first removal.
type bucket struct {
	ids []TaskID
	pos map[TaskID]int
}

func newBucket() *bucket {
	return &bucket{pos: make(map[TaskID]int)}
}

func (b *bucket) add(id TaskID) {
	if _, ok := b.pos[id]; ok {
		return
	}
	b.pos[id] = len(b.ids)
	b.ids = append(b.ids, id)
}

func (b *bucket) remove(id TaskID) bool {
	i, ok := b.pos[id]
	if !ok {
		return false
	}
	last := len(b.ids) - 1
	if i != last {
		moved := b.ids[last]
		b.ids[i] = moved
		b.pos[moved] = i
	}
	b.ids = b.ids[:last]
	delete(b.pos, id)
	return true
}

func (b *bucket) len() int { return len(b.ids) }
