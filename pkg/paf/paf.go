// Package paf implements the Problem-Aware-Feasibility meta-heuristic
// (spec.md §4.8): a two-phase retry loop that pre-allocates jobs proven
// difficult in a prior iteration before attempting the rest. Grounded on
// the (near-identical) paf_meta_heuristic function duplicated across
// original_source/backfill.py, feasint.py, dagfill.py, and dagfeasint.py.
package paf

import (
	"pafsched/pkg/heuristic"
	"pafsched/pkg/jobmodel"
)

// Outcome is the terminal result of a PAF run.
type Outcome struct {
	Schedule   jobmodel.Schedule
	Unassigned []*jobmodel.JobRun
	// GaveUp is true when pre-allocation of the difficult set itself
	// failed (spec.md §4.8 step 3): the loop still finished, but the
	// reported Unassigned set is not expected to shrink on further retries.
	GaveUp     bool
	Iterations int
}

// Run schedules specs across cores using driver, looping at most len(specs)
// times (spec.md's progress guarantee: difficult grows monotonically and is
// bounded by the job count).
func Run(specs []*jobmodel.JobSpec, driver heuristic.Driver, cores int) Outcome {
	n := len(specs)
	if n == 0 {
		return Outcome{Schedule: jobmodel.NewSchedule(cores)}
	}

	difficult := map[*jobmodel.JobSpec]bool{}
	regular := make(map[*jobmodel.JobSpec]bool, n)
	for _, s := range specs {
		regular[s] = true
	}

	var last Outcome
	for iter := 1; iter <= n; iter++ {
		runs, bySpec := jobmodel.NewRunSet(specs)
		driver.Prepare(runs, bySpec, cores)

		schedule := jobmodel.NewSchedule(cores)
		placed := make(map[*jobmodel.JobSpec]bool, n)

		difficultRuns := runsFor(difficult, bySpec)
		regularRuns := runsFor(regular, bySpec)

		unassigned1 := driver.Run(difficultRuns, regularRuns, bySpec, cores, schedule, placed)
		giveUp := len(unassigned1) > 0

		unassigned2 := driver.Run(regularRuns, nil, bySpec, cores, schedule, placed)

		last = Outcome{
			Schedule:   schedule,
			Unassigned: append(append([]*jobmodel.JobRun{}, unassigned1...), unassigned2...),
			GaveUp:     giveUp,
			Iterations: iter,
		}

		if len(unassigned2) == 0 {
			last.GaveUp = false
			return last
		}
		if giveUp {
			return last
		}

		promote(unassigned2, difficult, regular)
	}
	return last
}

func runsFor(specs map[*jobmodel.JobSpec]bool, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun) []*jobmodel.JobRun {
	out := make([]*jobmodel.JobRun, 0, len(specs))
	for s := range specs {
		out = append(out, bySpec[s])
	}
	return out
}

// promote moves every job in unassigned2 from regular to difficult, and
// transitively every one of its successors too (spec.md §4.8 step 5), so
// they are pre-placed in the next iteration ahead of their dependents.
func promote(unassigned2 []*jobmodel.JobRun, difficult, regular map[*jobmodel.JobSpec]bool) {
	var queue []*jobmodel.JobSpec
	for _, r := range unassigned2 {
		queue = append(queue, r.Spec)
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if difficult[s] {
			continue
		}
		difficult[s] = true
		delete(regular, s)
		queue = append(queue, s.Successors...)
	}
}
