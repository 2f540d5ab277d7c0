package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucket(t *testing.T) {
	b := newBucket()
	b.add(1)
	b.add(2)
	b.add(3)
	b.add(2)
	assert.Equal(t, 3, b.len())
	assert.Equal(t, []TaskID{1, 2, 3}, b.ids)

	assert.True(t, b.remove(1))
	assert.False(t, b.remove(1))
	assert.Equal(t, []TaskID{3, 2}, b.ids)
	assert.Equal(t, 0, b.pos[3])
	assert.Equal(t, 1, b.pos[2])

	assert.True(t, b.remove(2))
	assert.True(t, b.remove(3))
	assert.Equal(t, 0, b.len())
	assert.Empty(t, b.pos)
}
