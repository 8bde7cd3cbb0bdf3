package heuristic

import (
	"pafsched/pkg/dagprop"
	"pafsched/pkg/feasibility"
	"pafsched/pkg/jobmodel"
	"pafsched/pkg/pqueue"
)

// FeasInt is the precedence-free, feasibility-interval variant: jobs are
// placed at their latest feasible start, and every overlapping job's
// windows shrink accordingly (spec.md's feasint row), grounded on
// original_source/feasint.py.
type FeasInt struct{}

func feasIntScore(j *jobmodel.JobRun) pqueue.Score {
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

// Prepare initialises feasibility windows and the overlapping-jobs
// precompute over the whole job set (both phases of a PAF iteration).
func (FeasInt) Prepare(runs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, cores int) {
	jobmodel.InitFeasibility(runs, cores)
	dagprop.InitOverlap(runs)
}

// Run implements Driver. OverlappingJobs must already be precomputed over
// the full job set (both jobs and laterJobs) by pkg/dagprop.InitOverlap
// before this is called, and jobmodel.InitFeasibility must already have
// initialised every job's per-core window.
func (FeasInt) Run(jobs, laterJobs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, cores int, schedule jobmodel.Schedule, placed map[*jobmodel.JobSpec]bool) []*jobmodel.JobRun {
	q := pqueue.New()
	for _, j := range jobs {
		q.Add(j, feasIntScore(j))
	}
	inQueue := make(map[*jobmodel.JobSpec]bool, len(jobs))
	for _, j := range jobs {
		inQueue[j.Spec] = true
	}

	var unassigned []*jobmodel.JobRun
	for {
		j := q.Next()
		if j == nil {
			break
		}
		inQueue[j.Spec] = false

		core, iv, ok := feasibility.LatestStartpoint(j)
		if !ok {
			unassigned = append(unassigned, j)
			continue
		}
		start := feasibility.StartTime(iv)
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
			if inQueue[o.Spec] {
				q.Update(o, feasIntScore(o))
			}
		}
	}
	return unassigned
}
