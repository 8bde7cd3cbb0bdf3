package heuristic

import (
	"pafsched/pkg/backfill"
	"pafsched/pkg/dagprop"
	"pafsched/pkg/jobmodel"
	"pafsched/pkg/pqueue"
)

// DagFill is the precedence-aware, interval-free variant: backfill against
// DAG-tightened release/deadline bounds (spec.md's dagfill row), grounded
// on original_source/dagfill.py.
type DagFill struct{}

func dagFillScore(j *jobmodel.JobRun) pqueue.Score {
	return pqueue.Score{
		int64(j.SuccCount),
		int64(-j.DAGDeadline),
		int64(-j.DAGRelease),
		int64(-j.Spec.Cost),
		int64(j.Spec.ID),
	}
}

// Prepare tightens DAG bounds over the whole job set.
func (DagFill) Prepare(runs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, cores int) {
	dagprop.PrepDAG(runs, bySpec)
}

// Run implements Driver. Callers must run pkg/dagprop.PrepDAG over the full
// job set (jobs and laterJobs together) before calling Run, so DAGRelease/
// DAGDeadline already reflect static precedence tightening.
//
// Per spec.md §4.7, a job is only attempted for placement once its
// SuccCount reaches zero; since SuccCount sorts first (ascending) in the
// score, a job popped with SuccCount > 0 means every SuccCount == 0 job has
// already been drained, and this job's outstanding successor will never be
// placed in this phase — it is reported unassigned without a placement
// attempt.
func (DagFill) Run(jobs, laterJobs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, cores int, schedule jobmodel.Schedule, placed map[*jobmodel.JobSpec]bool) []*jobmodel.JobRun {
	q := pqueue.New()
	for _, j := range jobs {
		q.Add(j, dagFillScore(j))
	}
	inQueue := make(map[*jobmodel.JobSpec]bool, len(jobs))
	for _, j := range jobs {
		inQueue[j.Spec] = true
	}

	var unassigned []*jobmodel.JobRun
	requeue := func(r *jobmodel.JobRun) {
		if inQueue[r.Spec] {
			q.Update(r, dagFillScore(r))
		}
	}

	for {
		j := q.Next()
		if j == nil {
			break
		}
		inQueue[j.Spec] = false

		if j.SuccCount > 0 {
			unassigned = append(unassigned, j)
			continue
		}

		core, start, ok := backfill.Place(j, schedule, cores)
		if !ok {
			unassigned = append(unassigned, j)
			continue
		}
		place(schedule, core, j, start)
		placed[j.Spec] = true
		dagprop.OnPlacementDagfill(j, start, bySpec, placed, requeue)
	}
	return unassigned
}
