// Package feasibility maintains the per-core feasibility-window store used
// by the feasint and dagfeasint heuristics (spec.md §4.3), grounded on
// original_source/feasint.py and dagfeasint.py.
package feasibility

import (
	"pafsched/pkg/interval"
	"pafsched/pkg/jobmodel"
)

// UpdateFeas applies the effect of placing scheduled at startTime on core
// to every job in others: each job's admissible-start interval list on
// core has the blocked range [startTime - job.Cost, startTime +
// scheduled.Cost) subtracted (spec.md §4.3's four-case table, which is
// interval.SubtractBlocked specialised per job by its own cost). FeasRegion
// and FeasCores are kept in sync on each affected job.
func UpdateFeas(scheduled *jobmodel.JobRun, core, startTime int, others []*jobmodel.JobRun) {
	for _, j := range others {
		if j == scheduled || len(j.Feasibility) <= core {
			continue
		}
		list := j.Feasibility[core]
		if len(list) == 0 {
			continue
		}
		u := startTime - j.Spec.Cost
		v := startTime + scheduled.Spec.Cost
		before := interval.WidthSum(list)
		next := interval.SubtractBlocked(list, u, v)
		after := interval.WidthSum(next)
		j.Feasibility[core] = next
		j.FeasRegion -= before - after
		if len(list) > 0 && len(next) == 0 {
			j.FeasCores--
		}
	}
}

// LatestStartpoint returns the core and interval whose upper bound is
// greatest across job's feasibility lists (spec.md §4.3's
// latest_startpoint), the core of the winning interval, and whether any
// admissible interval exists at all. Ties break on the smallest core id,
// since cores are scanned in index order and only a strictly greater upper
// bound replaces the incumbent.
func LatestStartpoint(job *jobmodel.JobRun) (core int, iv interval.Interval, ok bool) {
	bestUpper := -1
	for c, list := range job.Feasibility {
		for _, candidate := range list {
			if candidate.End > bestUpper {
				bestUpper = candidate.End
				core = c
				iv = candidate
				ok = true
			}
		}
	}
	return core, iv, ok
}

// StartTime returns the highest admissible integer start within iv, i.e.
// its exclusive upper bound minus one.
func StartTime(iv interval.Interval) int {
	return iv.End - 1
}

// Resummarize recomputes FeasCores and FeasRegion for job from its current
// Feasibility lists. Used after a DAG-propagation intersection that doesn't
// go through UpdateFeas's incremental bookkeeping.
func Resummarize(job *jobmodel.JobRun) {
	cores := 0
	region := 0
	for _, list := range job.Feasibility {
		if len(list) > 0 {
			cores++
		}
		region += interval.WidthSum(list)
	}
	job.FeasCores = cores
	job.FeasRegion = region
}
