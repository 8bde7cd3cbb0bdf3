package paf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pafsched/pkg/heuristic"
	"pafsched/pkg/jobmodel"
	"pafsched/pkg/paf"
)

func TestRunEmptyJobSet(t *testing.T) {
	outcome := paf.Run(nil, heuristic.BackfillSimple{}, 2)
	assert.Empty(t, outcome.Unassigned)
	assert.False(t, outcome.GaveUp)
}

func TestRunSchedulesFeasibleIndependentJobs(t *testing.T) {
	specs := []*jobmodel.JobSpec{
		{ID: 1, Release: 0, Deadline: 20, Cost: 5},
		{ID: 2, Release: 0, Deadline: 20, Cost: 5},
		{ID: 3, Release: 0, Deadline: 20, Cost: 5},
	}
	outcome := paf.Run(specs, heuristic.BackfillSimple{}, 3)

	assert.Empty(t, outcome.Unassigned)
	assert.False(t, outcome.GaveUp)
	assert.Equal(t, 1, outcome.Iterations)
	total := 0
	for _, allocs := range outcome.Schedule {
		total += len(allocs)
	}
	assert.Equal(t, 3, total)
}

func TestRunReportsUnassignedWhenInfeasible(t *testing.T) {
	specs := []*jobmodel.JobSpec{
		{ID: 1, Release: 0, Deadline: 5, Cost: 5},
		{ID: 2, Release: 0, Deadline: 5, Cost: 5},
	}
	outcome := paf.Run(specs, heuristic.BackfillSimple{}, 1)
	require.Len(t, outcome.Unassigned, 1)
}

func TestRunSchedulesFeasibleJobsWithFeasInt(t *testing.T) {
	specs := []*jobmodel.JobSpec{
		{ID: 1, Release: 0, Deadline: 20, Cost: 5},
		{ID: 2, Release: 0, Deadline: 20, Cost: 5},
	}
	outcome := paf.Run(specs, heuristic.FeasInt{}, 1)
	assert.Empty(t, outcome.Unassigned)
	total := 0
	for _, allocs := range outcome.Schedule {
		total += len(allocs)
	}
	assert.Equal(t, 2, total)
}

func TestRunSchedulesDAGJobsWithDagFeasInt(t *testing.T) {
	a := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 20, Cost: 3}
	b := &jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 20, Cost: 3}
	a.Successors = []*jobmodel.JobSpec{b}
	b.Predecessors = []*jobmodel.JobSpec{a}

	outcome := paf.Run([]*jobmodel.JobSpec{a, b}, heuristic.DagFeasInt{}, 1)
	assert.Empty(t, outcome.Unassigned)

	var allocs []jobmodel.Allocation
	for _, core := range outcome.Schedule {
		allocs = append(allocs, core...)
	}
	require.Len(t, allocs, 2)
	byID := map[int]jobmodel.Allocation{}
	for _, alloc := range allocs {
		byID[alloc.Job.Spec.ID] = alloc
	}
	assert.LessOrEqual(t, byID[1].End(), byID[2].Start)
}

func TestRunTerminatesWithinJobCountIterations(t *testing.T) {
	// A DAG chain of 4 unit jobs that exactly fills [0, 4) on one core
	// should terminate within len(specs) PAF iterations.
	a := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 4, Cost: 1}
	b := &jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 4, Cost: 1}
	c := &jobmodel.JobSpec{ID: 3, Release: 0, Deadline: 4, Cost: 1}
	d := &jobmodel.JobSpec{ID: 4, Release: 0, Deadline: 4, Cost: 1}
	a.Successors = []*jobmodel.JobSpec{b}
	b.Predecessors = []*jobmodel.JobSpec{a}
	b.Successors = []*jobmodel.JobSpec{c}
	c.Predecessors = []*jobmodel.JobSpec{b}
	c.Successors = []*jobmodel.JobSpec{d}
	d.Predecessors = []*jobmodel.JobSpec{c}

	specs := []*jobmodel.JobSpec{a, b, c, d}
	outcome := paf.Run(specs, heuristic.DagFill{}, 1)
	assert.LessOrEqual(t, outcome.Iterations, len(specs))
}
