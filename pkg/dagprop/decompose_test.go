package dagprop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pafsched/pkg/jobmodel"
)

func TestDecomposeLinearChainsMergesSimpleChain(t *testing.T) {
	a := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 100, Cost: 3}
	b := &jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 100, Cost: 4}
	c := &jobmodel.JobSpec{ID: 3, Release: 0, Deadline: 100, Cost: 5}
	a.Successors = []*jobmodel.JobSpec{b}
	b.Predecessors = []*jobmodel.JobSpec{a}
	b.Successors = []*jobmodel.JobSpec{c}
	c.Predecessors = []*jobmodel.JobSpec{b}

	chains, remaining := DecomposeLinearChains([]*jobmodel.JobSpec{a, b, c})

	require.Len(t, chains, 1)
	assert.Empty(t, remaining)
	chain := chains[0]
	assert.Equal(t, 12, chain.Merged.Cost)
	assert.Equal(t, a.Release, chain.Merged.Release)
	assert.Equal(t, c.Deadline, chain.Merged.Deadline)
	require.Len(t, chain.Segments, 3)
	assert.Equal(t, a, chain.Segments[0].Spec)
	assert.Equal(t, c, chain.Segments[2].Spec)
}

func TestDecomposeLinearChainsLeavesFanInFanOutAlone(t *testing.T) {
	a := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 100, Cost: 3}
	b := &jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 100, Cost: 3}
	join := &jobmodel.JobSpec{ID: 3, Release: 0, Deadline: 100, Cost: 3}
	a.Successors = []*jobmodel.JobSpec{join}
	b.Successors = []*jobmodel.JobSpec{join}
	join.Predecessors = []*jobmodel.JobSpec{a, b}

	chains, remaining := DecomposeLinearChains([]*jobmodel.JobSpec{a, b, join})

	assert.Empty(t, chains)
	assert.ElementsMatch(t, []*jobmodel.JobSpec{a, b, join}, remaining)
}

func TestDecomposeLinearChainsLeavesIsolatedJobAlone(t *testing.T) {
	solo := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 100, Cost: 3}
	chains, remaining := DecomposeLinearChains([]*jobmodel.JobSpec{solo})
	assert.Empty(t, chains)
	assert.Equal(t, []*jobmodel.JobSpec{solo}, remaining)
}

func TestChainExpandPacksSegmentsBackToBack(t *testing.T) {
	a := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 100, Cost: 3}
	b := &jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 100, Cost: 4}
	chain := &Chain{Segments: []ChainSegment{{Spec: a, Order: 0}, {Spec: b, Order: 1}}}

	allocs := chain.Expand(2, 10)
	require.Len(t, allocs, 2)
	assert.Equal(t, 10, allocs[0].Start)
	assert.Equal(t, 13, allocs[1].Start)
	assert.Equal(t, 2, allocs[0].Core)
	assert.Equal(t, 2, allocs[1].Core)
}
