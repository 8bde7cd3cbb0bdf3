package heuristic

import (
	"pafsched/pkg/backfill"
	"pafsched/pkg/jobmodel"
	"pafsched/pkg/pqueue"
)

// BackfillSimple is the precedence-free, interval-free variant: each job is
// placed as late as possible within [release, deadline) (spec.md's
// backfill-simple row), grounded on original_source/backfill.py.
type BackfillSimple struct{}

func backfillSimpleScore(j *jobmodel.JobRun) pqueue.Score {
	return pqueue.Score{
		int64(j.Spec.Deadline),
		int64(-j.Spec.Release),
		int64(-j.Spec.Cost),
		int64(j.Spec.ID),
	}
}

// Prepare is a no-op: backfill-simple has no DAG bounds or feasibility
// windows to initialise.
func (BackfillSimple) Prepare(runs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, cores int) {
}

// Run implements Driver. Jobs carry no precedence edges in this variant, so
// DAGRelease/DAGDeadline equal the raw release/deadline (set by
// jobmodel.NewJobRun) and no propagation step is needed after placement.
func (BackfillSimple) Run(jobs, laterJobs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, cores int, schedule jobmodel.Schedule, placed map[*jobmodel.JobSpec]bool) []*jobmodel.JobRun {
	q := pqueue.New()
	for _, j := range jobs {
		q.Add(j, backfillSimpleScore(j))
	}

	var unassigned []*jobmodel.JobRun
	for {
		j := q.Next()
		if j == nil {
			break
		}
		core, start, ok := backfill.Place(j, schedule, cores)
		if !ok {
			unassigned = append(unassigned, j)
			continue
		}
		place(schedule, core, j, start)
		placed[j.Spec] = true
	}
	return unassigned
}
