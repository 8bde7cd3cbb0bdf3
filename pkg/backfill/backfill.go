// Package backfill implements latest-start backfill placement for the
// interval-free heuristic variants (spec.md §4.5), grounded on
// original_source/backfill.py (backfill_job, backfill_first_fit, overlap,
// conflicts) and dagfill.py's DAG-bound variant of the same algorithm.
package backfill

import (
	"sort"

	"pafsched/pkg/interval"
	"pafsched/pkg/jobmodel"
)

// Overlap reports whether occupation interval [start, start+cost) overlaps
// a job's admissible window [windowStart, windowEnd).
func Overlap(start, cost, windowStart, windowEnd int) bool {
	return interval.Overlap(start, start+cost, windowStart, windowEnd)
}

// Conflicts reports whether placing a job of cost c at t would overlap an
// already-placed allocation.
func Conflicts(t, cost int, blocker jobmodel.Allocation) bool {
	return interval.Overlap(t, t+cost, blocker.Start, blocker.End())
}

// relevantBlockers returns the allocations on core whose occupation
// interval overlaps job's [dagRelease, dagDeadline) window, sorted by start
// time descending (spec.md §4.5 step 1).
func relevantBlockers(job *jobmodel.JobRun, placed []jobmodel.Allocation) []jobmodel.Allocation {
	var out []jobmodel.Allocation
	for _, a := range placed {
		if Overlap(a.Start, a.Job.Spec.Cost, job.DAGRelease, job.DAGDeadline) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start > out[j].Start })
	return out
}

// clamp restricts v to [lo, +inf).
func clamp(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

// PlaceOnCore attempts to place job on a single core given its existing
// allocations, following spec.md §4.5 steps 2-4: try the latest admissible
// start, then just before each blocker in descending start order. Returns
// the chosen start time and true on success.
func PlaceOnCore(job *jobmodel.JobRun, placed []jobmodel.Allocation) (start int, ok bool) {
	blockers := relevantBlockers(job, placed)

	t := job.DAGDeadline - job.Spec.Cost
	if t >= job.DAGRelease && noConflict(t, job.Spec.Cost, blockers) {
		return t, true
	}

	for _, b := range blockers {
		upper := b.Start
		if job.DAGDeadline < upper {
			upper = job.DAGDeadline
		}
		t := clamp(upper-job.Spec.Cost, job.DAGRelease)
		if t+job.Spec.Cost <= job.DAGDeadline && noConflict(t, job.Spec.Cost, blockers) {
			return t, true
		}
	}
	return 0, false
}

func noConflict(t, cost int, blockers []jobmodel.Allocation) bool {
	for _, b := range blockers {
		if Conflicts(t, cost, b) {
			return false
		}
	}
	return true
}

// Place tries every core in schedule's index order (0..cores-1) and returns
// the first core/start that succeeds (spec.md §4.5: "first success wins").
func Place(job *jobmodel.JobRun, schedule jobmodel.Schedule, cores int) (core, start int, ok bool) {
	for c := 0; c < cores; c++ {
		if t, found := PlaceOnCore(job, schedule[c]); found {
			return c, t, true
		}
	}
	return 0, 0, false
}
