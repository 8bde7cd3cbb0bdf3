package heuristic

import (
	"pafsched/pkg/dagprop"
	"pafsched/pkg/feasibility"
	"pafsched/pkg/jobmodel"
	"pafsched/pkg/pqueue"
)

// DagFeasInt is the precedence-aware, feasibility-interval variant (spec.md's
// dagfeasint row), grounded on original_source/dagfeasint.py.
type DagFeasInt struct{}

func dagFeasIntScore(j *jobmodel.JobRun) pqueue.Score {
	latest := -1
	if _, iv, ok := feasibility.LatestStartpoint(j); ok {
		latest = feasibility.StartTime(iv)
	}
	return pqueue.Score{
		int64(j.SuccCount),
		int64(j.FeasCores),
		int64(-latest),
		int64(j.FeasRegion),
		int64(-j.Spec.Cost),
		int64(j.Spec.ID),
	}
}

// Prepare tightens DAG bounds, initialises feasibility windows, and
// precomputes overlapping jobs over the whole job set.
func (DagFeasInt) Prepare(runs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, cores int) {
	dagprop.PrepDAG(runs, bySpec)
	jobmodel.InitFeasibility(runs, cores)
	dagprop.InitOverlap(runs)
}

// Run implements Driver. Callers must run pkg/dagprop.PrepDAG (bound
// tightening), jobmodel.InitFeasibility (windows), and
// pkg/dagprop.InitOverlap (overlapping-jobs precompute) over the full job
// set before calling Run.
func (DagFeasInt) Run(jobs, laterJobs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, cores int, schedule jobmodel.Schedule, placed map[*jobmodel.JobSpec]bool) []*jobmodel.JobRun {
	q := pqueue.New()
	for _, j := range jobs {
		q.Add(j, dagFeasIntScore(j))
	}
	inQueue := make(map[*jobmodel.JobSpec]bool, len(jobs))
	for _, j := range jobs {
		inQueue[j.Spec] = true
	}
	requeue := func(r *jobmodel.JobRun) {
		if inQueue[r.Spec] {
			q.Update(r, dagFeasIntScore(r))
		}
	}

	var unassigned []*jobmodel.JobRun
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

		core, iv, ok := feasibility.LatestStartpoint(j)
		if !ok {
			unassigned = append(unassigned, j)
			continue
		}
		start := feasibility.StartTime(iv)

		// DAG propagation first, per spec.md §4.7, then feasibility update
		// over overlapping jobs on the chosen core.
		dagprop.OnPlacementDagfeasint(j, start, bySpec, placed, requeue)

		place(schedule, core, j, start)
		placed[j.Spec] = true

		pending := make([]*jobmodel.JobRun, 0, len(j.OverlappingJobs))
		for _, o := range j.OverlappingJobs {
			if !placed[o.Spec] {
				pending = append(pending, o)
			}
		}
		feasibility.UpdateFeas(j, core, start, pending)
		for _, o := range pending {
			requeue(o)
		}
	}
	return unassigned
}
