package feasibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pafsched/pkg/feasibility"
	"pafsched/pkg/interval"
	"pafsched/pkg/jobmodel"
)

func withFeasibility(cores int, lists ...[]interval.Interval) *jobmodel.JobRun {
	j := jobmodel.NewJobRun(&jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 100, Cost: 2})
	j.Feasibility = make([][]interval.Interval, cores)
	for c, l := range lists {
		j.Feasibility[c] = l
		j.FeasRegion += interval.WidthSum(l)
		if len(l) > 0 {
			j.FeasCores++
		}
	}
	return j
}

func TestUpdateFeasShrinksRegionAndCores(t *testing.T) {
	scheduled := jobmodel.NewJobRun(&jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 100, Cost: 3})
	other := withFeasibility(1, []interval.Interval{{Start: 0, End: 10}})

	feasibility.UpdateFeas(scheduled, 0, 5, []*jobmodel.JobRun{other})

	// other has cost 2, scheduled starts at 5 for 3 units: blocked = [5-2, 5+3) = [3, 8)
	assert.Equal(t, []interval.Interval{{Start: 0, End: 3}, {Start: 8, End: 10}}, other.Feasibility[0])
	assert.Equal(t, 5, other.FeasRegion)
	assert.Equal(t, 1, other.FeasCores)
}

func TestUpdateFeasDropsCoreWhenFullyConsumed(t *testing.T) {
	scheduled := jobmodel.NewJobRun(&jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 100, Cost: 10})
	other := withFeasibility(1, []interval.Interval{{Start: 0, End: 5}})

	feasibility.UpdateFeas(scheduled, 0, 0, []*jobmodel.JobRun{other})

	assert.Empty(t, other.Feasibility[0])
	assert.Equal(t, 0, other.FeasRegion)
	assert.Equal(t, 0, other.FeasCores)
}

func TestUpdateFeasSkipsTheScheduledJobItself(t *testing.T) {
	scheduled := withFeasibility(1, []interval.Interval{{Start: 0, End: 10}})
	feasibility.UpdateFeas(scheduled, 0, 5, []*jobmodel.JobRun{scheduled})
	assert.Equal(t, []interval.Interval{{Start: 0, End: 10}}, scheduled.Feasibility[0])
}

func TestLatestStartpointPicksGreatestUpperBound(t *testing.T) {
	j := withFeasibility(2,
		[]interval.Interval{{Start: 0, End: 5}},
		[]interval.Interval{{Start: 0, End: 8}, {Start: 10, End: 20}},
	)
	core, iv, ok := feasibility.LatestStartpoint(j)
	require.True(t, ok)
	assert.Equal(t, 1, core)
	assert.Equal(t, interval.Interval{Start: 10, End: 20}, iv)
}

func TestLatestStartpointNoneWhenEmpty(t *testing.T) {
	j := withFeasibility(2, nil, nil)
	_, _, ok := feasibility.LatestStartpoint(j)
	assert.False(t, ok)
}

func TestStartTimeIsInclusiveUpperBound(t *testing.T) {
	assert.Equal(t, 19, feasibility.StartTime(interval.Interval{Start: 10, End: 20}))
}

func TestResummarizeRecomputesFromScratch(t *testing.T) {
	j := withFeasibility(2,
		[]interval.Interval{{Start: 0, End: 5}},
		nil,
	)
	j.Feasibility[0] = []interval.Interval{{Start: 0, End: 3}}
	j.Feasibility[1] = []interval.Interval{{Start: 10, End: 15}}
	feasibility.Resummarize(j)
	assert.Equal(t, 2, j.FeasCores)
	assert.Equal(t, 8, j.FeasRegion)
}
