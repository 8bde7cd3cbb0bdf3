package backfill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pafsched/pkg/backfill"
	"pafsched/pkg/jobmodel"
)

func runWithWindow(id, release, deadline, cost int) *jobmodel.JobRun {
	j := jobmodel.NewJobRun(&jobmodel.JobSpec{ID: id, Release: release, Deadline: deadline, Cost: cost})
	j.DAGRelease = release
	j.DAGDeadline = deadline
	return j
}

func TestOverlapAndConflicts(t *testing.T) {
	assert.True(t, backfill.Overlap(5, 3, 0, 10))
	assert.False(t, backfill.Overlap(10, 3, 0, 10))

	blocker := jobmodel.Allocation{Job: runWithWindow(9, 0, 100, 4), Core: 0, Start: 10}
	assert.True(t, backfill.Conflicts(8, 5, blocker))
	assert.False(t, backfill.Conflicts(0, 5, blocker))
}

func TestPlaceOnCoreEmptyCoreUsesLatestStart(t *testing.T) {
	job := runWithWindow(1, 0, 20, 5)
	start, ok := backfill.PlaceOnCore(job, nil)
	require.True(t, ok)
	assert.Equal(t, 15, start) // deadline - cost
}

func TestPlaceOnCoreSqueezesBeforeBlocker(t *testing.T) {
	job := runWithWindow(1, 0, 20, 5)
	blocker := jobmodel.Allocation{Job: runWithWindow(2, 0, 20, 5), Core: 0, Start: 15}
	start, ok := backfill.PlaceOnCore(job, []jobmodel.Allocation{blocker})
	require.True(t, ok)
	assert.Equal(t, 10, start)
	assert.False(t, backfill.Conflicts(start, job.Spec.Cost, blocker))
}

func TestPlaceOnCoreFailsWhenNoRoom(t *testing.T) {
	job := runWithWindow(1, 0, 10, 5)
	// Two blockers covering the entire [0,10) window in 5-unit chunks.
	blockers := []jobmodel.Allocation{
		{Job: runWithWindow(2, 0, 10, 5), Core: 0, Start: 0},
		{Job: runWithWindow(3, 0, 10, 5), Core: 0, Start: 5},
	}
	_, ok := backfill.PlaceOnCore(job, blockers)
	assert.False(t, ok)
}

func TestPlaceTriesCoresInOrder(t *testing.T) {
	job := runWithWindow(1, 0, 20, 5)
	sched := jobmodel.NewSchedule(3)
	// core 0 is fully blocked for job's window, core 1 is free.
	sched[0] = []jobmodel.Allocation{{Job: runWithWindow(2, 0, 20, 20), Core: 0, Start: 0}}

	core, start, ok := backfill.Place(job, sched, 3)
	require.True(t, ok)
	assert.Equal(t, 1, core)
	assert.Equal(t, 15, start)
}
