// Package dagprop implements DAG-aware bound tightening and propagation
// (spec.md §4.4), grounded on original_source/dagfill.py's prep_dag and
// update_dag_constraints and dagfeasint.py's interval-list variant and
// init_overlap.
package dagprop

import (
	"pafsched/pkg/interval"
	"pafsched/pkg/jobmodel"
)

// PrepDAG tightens every job's DAGRelease/DAGDeadline by a transitive pass
// over the precedence graph (spec.md §3's dag_release/dag_deadline
// definitions). The original computes this recursively; here it is done
// iteratively over one Kahn topological order, walked forward for releases
// and backward for deadlines, so depth of the precedence chain never grows
// the call stack.
func PrepDAG(runs []*jobmodel.JobRun, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun) {
	order := topoOrder(runs)

	for _, r := range order {
		r.DAGRelease = r.Spec.Release
		for _, p := range r.Spec.Predecessors {
			pr := bySpec[p]
			if cand := pr.DAGRelease + pr.Spec.Cost; cand > r.DAGRelease {
				r.DAGRelease = cand
			}
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		r := order[i]
		r.DAGDeadline = r.Spec.Deadline
		for _, s := range r.Spec.Successors {
			sr := bySpec[s]
			if cand := sr.DAGDeadline - sr.Spec.Cost; cand < r.DAGDeadline {
				r.DAGDeadline = cand
			}
		}
	}
}

// topoOrder returns runs ordered so every predecessor precedes its
// successors (Kahn's algorithm). Acyclicity is a precondition (spec.md §3);
// any job whose predecessors never resolve is appended in input order as a
// fallback rather than dropped, since the core does not validate acyclicity.
func topoOrder(runs []*jobmodel.JobRun) []*jobmodel.JobRun {
	indegree := make(map[*jobmodel.JobSpec]int, len(runs))
	for _, r := range runs {
		indegree[r.Spec] = len(r.Spec.Predecessors)
	}
	bySpec := make(map[*jobmodel.JobSpec]*jobmodel.JobRun, len(runs))
	for _, r := range runs {
		bySpec[r.Spec] = r
	}

	var queue []*jobmodel.JobRun
	for _, r := range runs {
		if indegree[r.Spec] == 0 {
			queue = append(queue, r)
		}
	}

	order := make([]*jobmodel.JobRun, 0, len(runs))
	seen := make(map[*jobmodel.JobSpec]bool, len(runs))
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		if seen[r.Spec] {
			continue
		}
		seen[r.Spec] = true
		order = append(order, r)
		for _, s := range r.Spec.Successors {
			indegree[s]--
			if indegree[s] == 0 {
				queue = append(queue, bySpec[s])
			}
		}
	}
	if len(order) < len(runs) {
		for _, r := range runs {
			if !seen[r.Spec] {
				order = append(order, r)
			}
		}
	}
	return order
}

// OnPlacementDagfill applies the dagfill variant's propagation (spec.md
// §4.4) after job was placed at t: still-pending predecessors have their
// DAGDeadline clamped to t and SuccCount decremented; still-pending
// successors have their DAGRelease raised to t+cost. requeue is called for
// every affected job still eligible for consideration so the caller can
// push it back into its priority queue with a fresh score. bySpec resolves
// a JobSpec to its current-iteration JobRun.
func OnPlacementDagfill(job *jobmodel.JobRun, t int, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, placed map[*jobmodel.JobSpec]bool, requeue func(*jobmodel.JobRun)) {
	for _, p := range job.Spec.Predecessors {
		if placed[p] {
			continue
		}
		pr := bySpec[p]
		if t < pr.DAGDeadline {
			pr.DAGDeadline = t
		}
		pr.SuccCount--
		requeue(pr)
	}
	for _, s := range job.Spec.Successors {
		if placed[s] {
			continue
		}
		sr := bySpec[s]
		end := t + job.Spec.Cost
		if end > sr.DAGRelease {
			sr.DAGRelease = end
		}
		requeue(sr)
	}
}

// OnPlacementDagfeasint is the dagfeasint variant's propagation (spec.md
// §4.4): for each still-pending predecessor, every core's interval list is
// intersected with (-inf, t - p.cost) and its SuccCount decremented; for
// each still-pending successor,
// intersected with [t + j.cost, +inf). Intersection is implemented as
// subtracting the complementary blocked half-line, reusing
// interval.SubtractBlocked with one side driven far enough to be
// unreachable for any real schedule.
func OnPlacementDagfeasint(job *jobmodel.JobRun, t int, bySpec map[*jobmodel.JobSpec]*jobmodel.JobRun, placed map[*jobmodel.JobSpec]bool, requeue func(*jobmodel.JobRun)) {
	const farBound = 1 << 30

	for _, p := range job.Spec.Predecessors {
		if placed[p] {
			continue
		}
		pr := bySpec[p]
		bound := t - pr.Spec.Cost
		intersectUpperBound(pr, bound)
		pr.SuccCount--
		requeue(pr)
	}
	for _, s := range job.Spec.Successors {
		if placed[s] {
			continue
		}
		sr := bySpec[s]
		bound := t + job.Spec.Cost
		intersectLowerBound(sr, bound, farBound)
		requeue(sr)
	}
}

// intersectUpperBound restricts every core's interval list to [-inf, bound)
// by subtracting the blocked range [bound, +inf).
func intersectUpperBound(run *jobmodel.JobRun, bound int) {
	const farBound = 1 << 30
	for c, list := range run.Feasibility {
		run.Feasibility[c] = interval.SubtractBlocked(list, bound, farBound)
	}
	resummarize(run)
}

// intersectLowerBound restricts every core's interval list to [bound, +inf)
// by subtracting the blocked range [-inf, bound).
func intersectLowerBound(run *jobmodel.JobRun, bound, farBound int) {
	for c, list := range run.Feasibility {
		run.Feasibility[c] = interval.SubtractBlocked(list, -farBound, bound)
	}
	resummarize(run)
}

func resummarize(run *jobmodel.JobRun) {
	cores := 0
	region := 0
	for _, list := range run.Feasibility {
		if len(list) > 0 {
			cores++
		}
		region += interval.WidthSum(list)
	}
	run.FeasCores = cores
	run.FeasRegion = region
}

// InitOverlap precomputes OverlappingJobs for every run: job i and job j
// are mutual overlaps iff their [release, deadline) windows overlap
// (spec.md's boundary behaviour: non-overlapping windows are never added).
// O(n^2), matching original_source/dagfeasint.py's init_overlap; spec.md §9
// notes an interval tree would be needed past a few thousand jobs.
func InitOverlap(runs []*jobmodel.JobRun) {
	for _, r := range runs {
		r.OverlappingJobs = r.OverlappingJobs[:0]
	}
	for i := 0; i < len(runs); i++ {
		for j := i + 1; j < len(runs); j++ {
			a, b := runs[i], runs[j]
			if interval.Overlap(a.Spec.Release, a.Spec.Deadline, b.Spec.Release, b.Spec.Deadline) {
				a.OverlappingJobs = append(a.OverlappingJobs, b)
				b.OverlappingJobs = append(b.OverlappingJobs, a)
			}
		}
	}
}
