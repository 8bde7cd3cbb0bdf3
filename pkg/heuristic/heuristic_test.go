package heuristic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pafsched/pkg/heuristic"
	"pafsched/pkg/jobmodel"
)

func TestSelectDispatchesOnHeuristicAndDAGNess(t *testing.T) {
	cases := []struct {
		name  string
		isDAG bool
		want  heuristic.Driver
	}{
		{"backfill", false, heuristic.BackfillSimple{}},
		{"backfill", true, heuristic.DagFill{}},
		{"feasint", false, heuristic.FeasInt{}},
		{"feasint", true, heuristic.DagFeasInt{}},
	}
	for _, c := range cases {
		driver, err := heuristic.Select(c.name, c.isDAG)
		require.NoError(t, err)
		assert.IsType(t, c.want, driver)
	}
}

func TestSelectRejectsUnknownHeuristic(t *testing.T) {
	_, err := heuristic.Select("round-robin", false)
	assert.Error(t, err)
}

func TestBackfillSimplePlacesIndependentJobsLatestFirst(t *testing.T) {
	specs := []*jobmodel.JobSpec{
		{ID: 1, Release: 0, Deadline: 20, Cost: 5},
		{ID: 2, Release: 0, Deadline: 10, Cost: 5},
	}
	runs, bySpec := jobmodel.NewRunSet(specs)
	driver := heuristic.BackfillSimple{}
	driver.Prepare(runs, bySpec, 1)

	schedule := jobmodel.NewSchedule(1)
	placed := map[*jobmodel.JobSpec]bool{}
	unassigned := driver.Run(runs, nil, bySpec, 1, schedule, placed)

	assert.Empty(t, unassigned)
	assert.Len(t, schedule[0], 2)
	assert.True(t, placed[specs[0]])
	assert.True(t, placed[specs[1]])
}

func TestBackfillSimpleReportsUnassignedWhenNoRoom(t *testing.T) {
	specs := []*jobmodel.JobSpec{
		{ID: 1, Release: 0, Deadline: 5, Cost: 5},
		{ID: 2, Release: 0, Deadline: 5, Cost: 5},
	}
	runs, bySpec := jobmodel.NewRunSet(specs)
	driver := heuristic.BackfillSimple{}
	driver.Prepare(runs, bySpec, 1)

	schedule := jobmodel.NewSchedule(1)
	placed := map[*jobmodel.JobSpec]bool{}
	unassigned := driver.Run(runs, nil, bySpec, 1, schedule, placed)

	require.Len(t, unassigned, 1)
	assert.Len(t, schedule[0], 1)
}
