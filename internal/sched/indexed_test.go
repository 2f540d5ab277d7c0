package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexedBackendDropsEmptyBuckets(t *testing.T) {
	b := NewIndexedBackend()
	b.Insert(NewTask(1, 5, NewResources(4, 2, 1), ""))
	b.Insert(NewTask(2, 5, NewResources(4, 3, 0), ""))

	assert.Equal(t, 1, b.dims[0].Size())
	assert.Equal(t, 2, b.dims[1].Size())
	assert.Equal(t, 1, b.priority.Size())

	got, ok := b.TakeBest(NewResources(4, 2, 1))
	require.True(t, ok)
	assert.Equal(t, TaskID(1), got.ID)

	assert.Equal(t, 1, b.dims[0].Size())
	assert.Equal(t, 1, b.dims[1].Size())
	assert.Equal(t, 1, b.dims[2].Size())
	assert.Equal(t, 1, b.priority.Size())

	_, ok = b.TakeBest(NewResources(4, 3, 0))
	require.True(t, ok)
	assert.True(t, b.dims[0].Empty())
	assert.True(t, b.dims[1].Empty())
	assert.True(t, b.dims[2].Empty())
	assert.True(t, b.priority.Empty())
}

func TestIndexedBackendNegativeDimensions(t *testing.T) {
	b := NewIndexedBackend()
	b.Insert(NewTask(1, 0, NewResources(-2, 0, 0), ""))

	_, ok := b.TakeBest(NewResources(-3, 0, 0))
	assert.False(t, ok)

	got, ok := b.TakeBest(NewResources(-2, 0, 0))
	require.True(t, ok)
	assert.Equal(t, TaskID(1), got.ID)
}

func TestCollectUpTo(t *testing.T) {
	b := NewIndexedBackend()
	for i, ram := range []int{1, 2, 2, 3, 8} {
		b.Insert(NewTask(TaskID(i+1), 0, NewResources(ram, 0, 0), ""))
	}

	set := collectUpTo(b.dims[0], 2)
	assert.Equal(t, 3, set.Size())
	assert.True(t, set.Contains(TaskID(1), TaskID(2), TaskID(3)))
	assert.False(t, set.Contains(TaskID(4)))

	assert.Equal(t, 0, collectUpTo(b.dims[0], 0).Size())
	assert.Equal(t, 5, collectUpTo(b.dims[0], 100).Size())
}
