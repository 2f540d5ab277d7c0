package sched

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BackendTestSuite struct {
	suite.Suite
	newBackend func() Backend
	b          Backend
}

func (suite *BackendTestSuite) SetupTest() {
	suite.b = suite.newBackend()
}

func TestLinearBackend(t *testing.T) {
	suite.Run(t, &BackendTestSuite{newBackend: func() Backend { return NewLinearBackend() }})
}

func TestIndexedBackend(t *testing.T) {
	suite.Run(t, &BackendTestSuite{newBackend: func() Backend { return NewIndexedBackend() }})
}

func unit() Resources { return NewResources(1, 1, 1) }

func (suite *BackendTestSuite) TestTakeBestEmpty() {
	t, ok := suite.b.TakeBest(unit())
	suite.False(ok)
	suite.Nil(t)
	suite.Equal(0, suite.b.Len())
}

func (suite *BackendTestSuite) TestTaskDoesNotFit() {
	suite.b.Insert(NewTask(1, 1, NewResources(100, 100, 100), "content"))

	t, ok := suite.b.TakeBest(unit())
	suite.False(ok)
	suite.Nil(t)
	suite.Equal(1, suite.b.Len())
	suite.True(suite.b.Contains(1))
}

func (suite *BackendTestSuite) TestSingleTaskFits() {
	task := NewTask(1, 1, unit(), "content")
	suite.b.Insert(task)
	suite.Equal(1, suite.b.Len())

	t, ok := suite.b.TakeBest(unit())
	suite.True(ok)
	suite.Same(task, t)
	suite.Equal(0, suite.b.Len())
	suite.False(suite.b.Contains(1))

	_, ok = suite.b.TakeBest(unit())
	suite.False(ok)
}

func (suite *BackendTestSuite) TestHigherPriorityFirst() {
	suite.b.Insert(NewTask(1, 1, unit(), "content"))
	suite.b.Insert(NewTask(2, 10, unit(), "content"))

	t, ok := suite.b.TakeBest(unit())
	suite.Require().True(ok)
	suite.Equal(TaskID(2), t.ID)
	suite.Equal(1, suite.b.Len())

	t, ok = suite.b.TakeBest(unit())
	suite.Require().True(ok)
	suite.Equal(TaskID(1), t.ID)
	suite.Equal(0, suite.b.Len())
}

func (suite *BackendTestSuite) TestNegativePriority() {
	suite.b.Insert(NewTask(1, -1, unit(), "content"))
	suite.b.Insert(NewTask(2, 10, unit(), "content"))
	suite.b.Insert(NewTask(3, 0, unit(), "content"))

	var got []TaskID
	for i := 0; i < 3; i++ {
		t, ok := suite.b.TakeBest(unit())
		suite.Require().True(ok)
		got = append(got, t.ID)
	}
	suite.Equal([]TaskID{2, 3, 1}, got)
}

func (suite *BackendTestSuite) TestSkipsHigherPriorityThatDoesNotFit() {
	suite.b.Insert(NewTask(1, 100, NewResources(8, 1, 0), "big ram"))
	suite.b.Insert(NewTask(2, 50, NewResources(1, 8, 0), "many cores"))
	suite.b.Insert(NewTask(3, 10, NewResources(1, 1, 2), "two gpus"))
	suite.b.Insert(NewTask(4, 1, NewResources(1, 1, 0), "small"))

	t, ok := suite.b.TakeBest(NewResources(4, 4, 1))
	suite.Require().True(ok)
	suite.Equal(TaskID(4), t.ID)

	// each remaining task fails on exactly one dimension
	_, ok = suite.b.TakeBest(NewResources(4, 4, 1))
	suite.False(ok)
	suite.Equal(3, suite.b.Len())

	t, ok = suite.b.TakeBest(NewResources(8, 8, 2))
	suite.Require().True(ok)
	suite.Equal(TaskID(1), t.ID)
}

func (suite *BackendTestSuite) TestEqualValuesFit() {
	suite.b.Insert(NewTask(7, 3, NewResources(512, 2, 1), "content"))

	_, ok := suite.b.TakeBest(NewResources(511, 2, 1))
	suite.False(ok)

	t, ok := suite.b.TakeBest(NewResources(512, 2, 1))
	suite.True(ok)
	suite.Equal(TaskID(7), t.ID)
}

func (suite *BackendTestSuite) TestTiesDrainEachOnce() {
	for id := TaskID(1); id <= 5; id++ {
		suite.b.Insert(NewTask(id, 7, unit(), "tied"))
	}
	suite.b.Insert(NewTask(6, 7, NewResources(2, 1, 1), "tied, too big"))
	suite.b.Insert(NewTask(7, 1, unit(), "low"))

	seen := make(map[TaskID]bool)
	for i := 0; i < 5; i++ {
		t, ok := suite.b.TakeBest(unit())
		suite.Require().True(ok)
		suite.Equal(7, t.Priority)
		suite.True(t.Resources.FitsWithin(unit()))
		suite.False(seen[t.ID], "task %d returned twice", t.ID)
		seen[t.ID] = true
	}
	suite.Len(seen, 5)

	t, ok := suite.b.TakeBest(unit())
	suite.Require().True(ok)
	suite.Equal(TaskID(7), t.ID)

	_, ok = suite.b.TakeBest(unit())
	suite.False(ok)
	suite.Equal(1, suite.b.Len())
	suite.True(suite.b.Contains(6))
}

func (suite *BackendTestSuite) TestContentCarriedThrough() {
	task := NewTask(1, 1, unit(), "payload")
	task.Result = "stale"
	suite.b.Insert(task)

	t, ok := suite.b.TakeBest(unit())
	suite.Require().True(ok)
	suite.Equal("payload", t.Content)
	suite.Equal("stale", t.Result)
}

func (suite *BackendTestSuite) TestReinsertAfterTake() {
	task := NewTask(1, 1, unit(), "content")
	suite.b.Insert(task)
	_, ok := suite.b.TakeBest(unit())
	suite.Require().True(ok)

	suite.b.Insert(task)
	suite.True(suite.b.Contains(1))
	t, ok := suite.b.TakeBest(unit())
	suite.True(ok)
	suite.Same(task, t)
}

// TestBackendsAgree feeds the same random workload to both backends and
// checks that every selection has the same priority and fits.
func TestBackendsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	linear := NewLinearBackend()
	indexed := NewIndexedBackend()

	randRes := func(n int) Resources {
		return NewResources(rng.Intn(n), rng.Intn(n), rng.Intn(n))
	}

	nextID := TaskID(1)
	for round := 0; round < 500; round++ {
		if rng.Intn(3) > 0 {
			res := randRes(6)
			prio := rng.Intn(21) - 10
			linear.Insert(NewTask(nextID, prio, res, ""))
			indexed.Insert(NewTask(nextID, prio, res, ""))
			nextID++
		}

		avail := randRes(6)
		lt, lok := linear.TakeBest(avail)
		it, iok := indexed.TakeBest(avail)
		require.Equal(t, lok, iok, "round %d avail %s", round, avail)
		if lok {
			assert.Equal(t, lt.Priority, it.Priority, "round %d", round)
			assert.True(t, lt.Resources.FitsWithin(avail))
			assert.True(t, it.Resources.FitsWithin(avail))
			assert.False(t, indexed.Contains(it.ID))

			// ties may pick different tasks, keep both backends holding the same set
			if lt.ID != it.ID {
				linear.Insert(lt)
				require.True(t, removeByID(linear, it.ID))
			}
		}
		require.Equal(t, linear.Len(), indexed.Len(), "round %d", round)
	}
}

func removeByID(b *LinearBackend, id TaskID) bool {
	for i, v := range b.tasks.Values() {
		if v.(*Task).ID == id {
			b.tasks.Remove(i)
			b.ids.Remove(id)
			return true
		}
	}
	return false
}
