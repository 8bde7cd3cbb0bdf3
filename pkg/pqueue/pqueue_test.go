package pqueue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pafsched/pkg/jobmodel"
	"pafsched/pkg/pqueue"
)

func newRun(id int) *jobmodel.JobRun {
	return jobmodel.NewJobRun(&jobmodel.JobSpec{ID: id, Release: 0, Deadline: 100, Cost: 1})
}

func TestScoreLess(t *testing.T) {
	cases := []struct {
		name string
		a, b pqueue.Score
		want bool
	}{
		{"first element decides", pqueue.Score{1, 5}, pqueue.Score{2, 0}, true},
		{"tie broken by second element", pqueue.Score{1, 5}, pqueue.Score{1, 6}, true},
		{"equal scores", pqueue.Score{1, 5}, pqueue.Score{1, 5}, false},
		{"shorter prefix sorts first on tie", pqueue.Score{1}, pqueue.Score{1, 0}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.a.Less(c.b))
		})
	}
}

func TestQueueOrdersByScoreAscending(t *testing.T) {
	q := pqueue.New()
	j1, j2, j3 := newRun(1), newRun(2), newRun(3)
	q.Add(j1, pqueue.Score{3, 1})
	q.Add(j2, pqueue.Score{1, 2})
	q.Add(j3, pqueue.Score{2, 3})

	require.Equal(t, 3, q.Len())
	assert.Same(t, j2, q.Next())
	assert.Same(t, j3, q.Next())
	assert.Same(t, j1, q.Next())
	assert.Nil(t, q.Next())
}

func TestQueueUpdateSupersedesStaleEntry(t *testing.T) {
	q := pqueue.New()
	j1, j2 := newRun(1), newRun(2)
	q.Add(j1, pqueue.Score{5, 1})
	q.Add(j2, pqueue.Score{10, 2})

	// Re-score j1 to sort after j2; the old heap entry for j1 becomes stale.
	q.Update(j1, pqueue.Score{20, 1})

	assert.Same(t, j2, q.Next())
	assert.Same(t, j1, q.Next())
	assert.Nil(t, q.Next())
}

func TestQueueClearsHandleOnPop(t *testing.T) {
	q := pqueue.New()
	j := newRun(1)
	q.Add(j, pqueue.Score{1, 1})
	assert.NotEqual(t, jobmodel.QueueHandle(0), j.QueueHandle)

	popped := q.Next()
	require.NotNil(t, popped)
	assert.Equal(t, jobmodel.QueueHandle(0), popped.QueueHandle)
}
