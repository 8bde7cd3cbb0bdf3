package milpexport_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pafsched/pkg/jobmodel"
	"pafsched/pkg/milpexport"
)

func TestBigMExceedsAnyFeasibleGap(t *testing.T) {
	specs := []*jobmodel.JobSpec{
		{ID: 1, Release: 0, Deadline: 20, Cost: 5},
		{ID: 2, Release: 0, Deadline: 10, Cost: 3},
	}
	m := milpexport.BigM(specs)
	assert.Greater(t, m, 20)
}

func TestWriteProducesWellFormedLPSections(t *testing.T) {
	specs := []*jobmodel.JobSpec{
		{ID: 0, Release: 0, Deadline: 10, Cost: 2},
		{ID: 1, Release: 0, Deadline: 10, Cost: 3},
	}
	var buf strings.Builder
	require.NoError(t, milpexport.Write(&buf, specs, 2, "testmodel"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\\ testmodel:"))
	assert.Contains(t, out, "Minimize")
	assert.Contains(t, out, "Subject To")
	assert.Contains(t, out, "Bounds")
	assert.Contains(t, out, "Binaries")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "End"))
	assert.Contains(t, out, "jobassign_0")
	assert.Contains(t, out, "y0_1") // the two jobs' windows overlap
}

func TestWriteOmitsSequencingForDisjointWindows(t *testing.T) {
	specs := []*jobmodel.JobSpec{
		{ID: 0, Release: 0, Deadline: 5, Cost: 2},
		{ID: 1, Release: 10, Deadline: 20, Cost: 2},
	}
	var buf strings.Builder
	require.NoError(t, milpexport.Write(&buf, specs, 1, "disjoint"))
	assert.NotContains(t, buf.String(), "y0_1")
}
