package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pafsched/pkg/jobmodel"
	"pafsched/pkg/report"
)

func TestWriteCSVSortsByJobIDAndFormatsFixedPoint(t *testing.T) {
	specA := &jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 10, Cost: 3, TaskID: 1, InstanceOfTask: 0}
	specB := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 10, Cost: 2, TaskID: 1, InstanceOfTask: 1}
	schedule := jobmodel.Schedule{
		0: {{Job: jobmodel.NewJobRun(specA), Core: 0, Start: 5}},
		1: {{Job: jobmodel.NewJobRun(specB), Core: 1, Start: 0}},
	}

	var buf strings.Builder
	require.NoError(t, report.WriteCSV(&buf, schedule))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows
	assert.Contains(t, lines[1], "1,1,0.00")
	assert.Contains(t, lines[2], "2,0,5.00")
}

func specWithPred() (*jobmodel.JobSpec, *jobmodel.JobSpec) {
	pred := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 10, Cost: 3}
	succ := &jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 10, Cost: 3}
	pred.Successors = []*jobmodel.JobSpec{succ}
	succ.Predecessors = []*jobmodel.JobSpec{pred}
	return pred, succ
}

func TestValidateCleanScheduleHasNoViolations(t *testing.T) {
	pred, succ := specWithPred()
	schedule := jobmodel.Schedule{
		0: {
			{Job: jobmodel.NewJobRun(pred), Core: 0, Start: 0},
			{Job: jobmodel.NewJobRun(succ), Core: 0, Start: 3},
		},
	}
	violations := report.Validate([]*jobmodel.JobSpec{pred, succ}, schedule, nil)
	assert.Empty(t, violations)
}

func TestValidateCatchesPrecedenceViolation(t *testing.T) {
	pred, succ := specWithPred()
	schedule := jobmodel.Schedule{
		0: {
			{Job: jobmodel.NewJobRun(succ), Core: 0, Start: 0},
			{Job: jobmodel.NewJobRun(pred), Core: 0, Start: 3},
		},
	}
	violations := report.Validate([]*jobmodel.JobSpec{pred, succ}, schedule, nil)
	require.NotEmpty(t, violations)
	found := false
	for _, v := range violations {
		if v.Kind == "precedence-violation" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateCatchesOverlapAndWindowViolations(t *testing.T) {
	a := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 5, Cost: 3}
	b := &jobmodel.JobSpec{ID: 2, Release: 0, Deadline: 4, Cost: 3}
	schedule := jobmodel.Schedule{
		0: {
			{Job: jobmodel.NewJobRun(a), Core: 0, Start: 0},
			{Job: jobmodel.NewJobRun(b), Core: 0, Start: 2}, // overlaps a, and ends at 5, past deadline 4
		},
	}
	violations := report.Validate([]*jobmodel.JobSpec{a, b}, schedule, nil)
	kinds := map[string]bool{}
	for _, v := range violations {
		kinds[v.Kind] = true
	}
	assert.True(t, kinds["overlap"])
	assert.True(t, kinds["window-violation"])
}

func TestValidateFlagsMissingJob(t *testing.T) {
	a := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 10, Cost: 1}
	violations := report.Validate([]*jobmodel.JobSpec{a}, jobmodel.NewSchedule(1), nil)
	require.Len(t, violations, 1)
	assert.Equal(t, "missing", violations[0].Kind)
}

func TestValidateAcceptsReportedUnassigned(t *testing.T) {
	a := &jobmodel.JobSpec{ID: 1, Release: 0, Deadline: 10, Cost: 1}
	run := jobmodel.NewJobRun(a)
	violations := report.Validate([]*jobmodel.JobSpec{a}, jobmodel.NewSchedule(1), []*jobmodel.JobRun{run})
	assert.Empty(t, violations)
}
