package dagprop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pafsched/pkg/dagprop"
	"pafsched/pkg/jobmodel"
)

// chain builds A -> B -> C, all release 0, deadline 100, cost 5.
func chain(t *testing.T) ([]*jobmodel.JobSpec, []*jobmodel.JobRun, map[*jobmodel.JobSpec]*jobmodel.JobRun) {
	t.Helper()
	a := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 100, Cost: 5}
	b := &jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 100, Cost: 5}
	c := &jobmodel.JobSpec{ID: 3, Release: 0, Deadline: 100, Cost: 5}
	a.Successors = []*jobmodel.JobSpec{b}
	b.Predecessors = []*jobmodel.JobSpec{a}
	b.Successors = []*jobmodel.JobSpec{c}
	c.Predecessors = []*jobmodel.JobSpec{b}

	specs := []*jobmodel.JobSpec{a, b, c}
	runs, bySpec := jobmodel.NewRunSet(specs)
	return specs, runs, bySpec
}

func TestPrepDAGTightensReleaseAndDeadlineAlongChain(t *testing.T) {
	_, runs, bySpec := chain(t)
	dagprop.PrepDAG(runs, bySpec)

	// release tightens forward: A=0, B>=A.release+A.cost=5, C>=B.release+B.cost=10
	assert.Equal(t, 0, runs[0].DAGRelease)
	assert.Equal(t, 5, runs[1].DAGRelease)
	assert.Equal(t, 10, runs[2].DAGRelease)

	// deadline tightens backward: C=100, B<=C.deadline-C.cost=95, A<=B.deadline-B.cost=90
	assert.Equal(t, 100, runs[2].DAGDeadline)
	assert.Equal(t, 95, runs[1].DAGDeadline)
	assert.Equal(t, 90, runs[0].DAGDeadline)
}

func TestOnPlacementDagfillPropagatesToNeighbors(t *testing.T) {
	_, runs, bySpec := chain(t)
	dagprop.PrepDAG(runs, bySpec)
	placed := map[*jobmodel.JobSpec]bool{}
	var requeued []*jobmodel.JobRun
	requeue := func(r *jobmodel.JobRun) { requeued = append(requeued, r) }

	// Place A (runs[0]) at t=0.
	placed[runs[0].Spec] = true
	dagprop.OnPlacementDagfill(runs[0], 0, bySpec, placed, requeue)

	// A has no predecessors; its successor B's release is raised to t+cost=5
	// (already 5 from PrepDAG, so unchanged) and B gets requeued.
	require.Len(t, requeued, 1)
	assert.Same(t, runs[1], requeued[0])
	assert.Equal(t, 5, runs[1].DAGRelease)
}

func TestOnPlacementDagfillDecrementsPredecessorSuccCount(t *testing.T) {
	_, runs, bySpec := chain(t)
	dagprop.PrepDAG(runs, bySpec)
	placed := map[*jobmodel.JobSpec]bool{}
	var requeued []*jobmodel.JobRun
	requeue := func(r *jobmodel.JobRun) { requeued = append(requeued, r) }

	initialSuccCount := runs[0].SuccCount
	placed[runs[1].Spec] = true
	dagprop.OnPlacementDagfill(runs[1], 50, bySpec, placed, requeue)

	assert.Equal(t, initialSuccCount-1, runs[0].SuccCount)
	assert.LessOrEqual(t, runs[0].DAGDeadline, 50)
	require.Contains(t, requeued, runs[0])
	require.Contains(t, requeued, runs[2])
}

func TestOnPlacementDagfeasintIntersectsFeasibilityWindows(t *testing.T) {
	_, runs, bySpec := chain(t)
	dagprop.PrepDAG(runs, bySpec)
	jobmodel.InitFeasibility(runs, 1)
	placed := map[*jobmodel.JobSpec]bool{}
	var requeued []*jobmodel.JobRun
	requeue := func(r *jobmodel.JobRun) { requeued = append(requeued, r) }

	placed[runs[0].Spec] = true
	dagprop.OnPlacementDagfeasint(runs[0], 10, bySpec, placed, requeue)

	// B's feasibility window is now bounded below by t+cost = 15.
	for _, iv := range runs[1].Feasibility[0] {
		assert.GreaterOrEqual(t, iv.Start, 15)
	}
	require.Contains(t, requeued, runs[1])
}

func TestInitOverlapIsSymmetricAndRespectsWindows(t *testing.T) {
	a := jobmodel.NewJobRun(&jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 10})
	b := jobmodel.NewJobRun(&jobmodel.JobSpec{ID: 2, Release: 5, Deadline: 15})
	c := jobmodel.NewJobRun(&jobmodel.JobSpec{ID: 3, Release: 20, Deadline: 30})

	dagprop.InitOverlap([]*jobmodel.JobRun{a, b, c})

	assert.Contains(t, a.OverlappingJobs, b)
	assert.Contains(t, b.OverlappingJobs, a)
	assert.NotContains(t, a.OverlappingJobs, c)
	assert.NotContains(t, c.OverlappingJobs, a)
}

func TestInitOverlapResetsPriorResults(t *testing.T) {
	a := jobmodel.NewJobRun(&jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 10})
	b := jobmodel.NewJobRun(&jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 10})
	dagprop.InitOverlap([]*jobmodel.JobRun{a, b})
	require.Len(t, a.OverlappingJobs, 1)

	// Re-running with a disjoint window should drop the stale entry.
	c := jobmodel.NewJobRun(&jobmodel.JobSpec{ID: 3, Release: 100, Deadline: 110})
	dagprop.InitOverlap([]*jobmodel.JobRun{a, c})
	assert.Empty(t, a.OverlappingJobs)
}
