package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitsWithin(t *testing.T) {
	tests := []struct {
		name  string
		need  Resources
		avail Resources
		fits  bool
	}{
		{"equal", NewResources(1, 1, 1), NewResources(1, 1, 1), true},
		{"smaller", NewResources(1, 1, 0), NewResources(4, 2, 1), true},
		{"zero", Resources{}, Resources{}, true},
		{"ram too big", NewResources(5, 1, 1), NewResources(4, 2, 1), false},
		{"cpu too big", NewResources(1, 3, 1), NewResources(4, 2, 1), false},
		{"gpu too big", NewResources(1, 1, 2), NewResources(4, 2, 1), false},
		// lexicographic order would accept this one
		{"incomparable", NewResources(1, 5, 0), NewResources(2, 1, 0), false},
		{"negative need", NewResources(-1, -1, -1), Resources{}, true},
		{"negative avail", Resources{}, NewResources(-1, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fits, tt.need.FitsWithin(tt.avail))
		})
	}
}

func TestResourcesArithmetic(t *testing.T) {
	a := NewResources(10, 4, 1)
	b := NewResources(3, 1, 1)

	assert.Equal(t, NewResources(7, 3, 0), a.Subtract(b))
	assert.Equal(t, NewResources(13, 5, 2), a.Add(b))
	assert.Equal(t, a, a.Subtract(b).Add(b))
	assert.Equal(t, NewResources(-3, -1, -1), Resources{}.Subtract(b))
	assert.Equal(t, "ram=10 cpu=4 gpu=1", a.String())
}
