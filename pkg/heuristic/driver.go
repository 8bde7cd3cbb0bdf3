// Package heuristic implements the four scheduling drivers (spec.md
// §§2.6, 4.7): backfill-simple, feasint, dagfill, dagfeasint. Each is
// grounded on the matching original_source file and shares the
// Driver interface so pkg/paf can run any of them without knowing which
// variant it holds.
package heuristic

import (
	"fmt"

	"pafsched/pkg/jobmodel"
)

// Driver schedules jobs onto schedule in place and reports which of them
// could not be placed. laterJobs are jobs reserved for a subsequent PAF
// phase: they are not scheduled by this call, but their feasibility
// windows and DAG bounds must still be tightened by placements made here
// (spec.md §4.8's cross-phase visibility). placed records, for every job
// spec across the whole run (not just this call's jobs), whether it has
// already been given a start time; Run both reads it (to know whether a
// precedence neighbour or overlap partner is still pending) and writes to
// it (marking jobs it places).
type Driver interface {
	// Prepare runs whatever one-time, whole-job-set computation this
	// variant needs at the start of a PAF iteration (DAG bound tightening,
	// feasibility window initialisation, overlap precomputation) before any
	// Run call. BackfillSimple's is a no-op.
	Prepare(runs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, cores int)

	Run(jobs, laterJobs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, cores int, schedule jobmodel.Schedule, placed map[*jobmodel.JobSpec]bool) (unassigned []*jobmodel.JobRun)
}

func place(schedule jobmodel.Schedule, core int, job *jobmodel.JobRun, start int) {
	schedule[core] = append(schedule[core], jobmodel.Allocation{Job: job, Core: core, Start: start})
}

// Select resolves spec.md §6's --heuristic flag ("backfill" or "feasint")
// against whether the job set carries precedence edges, matching
// original_source/schedule.py's run_heuristic dispatch: a DAG job set
// always runs the DAG-aware variant of whichever family was requested.
func Select(name string, isDAG bool) (Driver, error) {
	switch {
	case name == "backfill" && isDAG:
		return DagFill{}, nil
	case name == "backfill" && !isDAG:
		return BackfillSimple{}, nil
	case name == "feasint" && isDAG:
		return DagFeasInt{}, nil
	case name == "feasint" && !isDAG:
		return FeasInt{}, nil
	default:
		return nil, fmt.Errorf("heuristic: unrecognised heuristic %q", name)
	}
}
