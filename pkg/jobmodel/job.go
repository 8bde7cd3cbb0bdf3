// Package jobmodel defines the job, allocation, and schedule data types
// shared by every scheduling heuristic in this repository.
//
// Per spec.md §9's Design Notes, immutable job identity (JobSpec) is kept
// separate from the mutable per-run scheduling state (JobRun): a JobSpec is
// shared read-only by every PAF iteration, while a fresh JobRun is built at
// the start of each iteration so per-run fields never leak between runs.
package jobmodel

import "pafsched/pkg/interval"

// JobSpec is the immutable identity of a real-time job: release time,
// deadline, cost, and DAG precedence edges. Acyclicity of the precedence
// graph is a precondition; nothing in this package checks it.
type JobSpec struct {
	ID      int
	Release int
	Deadline int
	Cost    int

	Predecessors []*JobSpec
	Successors   []*JobSpec

	// TaskID and InstanceOfTask identify the originating task and the
	// per-hyperperiod instance number, for report output (spec.md §6).
	TaskID         int
	InstanceOfTask int
}

// QueueHandle is a generation-counter token a pqueue.Queue uses to decide
// whether a popped entry is still live. See pkg/pqueue.
type QueueHandle uint64

// JobRun holds the mutable state the heuristics thread through one PAF
// iteration: DAG-tightened bounds, feasibility windows, and queue
// bookkeeping. A fresh slice of JobRun is allocated per iteration; JobSpec
// is never mutated.
type JobRun struct {
	Spec *JobSpec

	DAGRelease  int
	DAGDeadline int

	// Feasibility is the per-core list of disjoint admissible-start
	// intervals, populated only by the feasibility-interval variants
	// (feasint, dagfeasint).
	Feasibility []intervalList

	FeasCores  int
	FeasRegion int

	SuccCount int

	// QueueHandle is QueueHandle(0) when the job is not currently queued;
	// any other value must match the live entry's handle for that entry
	// to be considered valid.
	QueueHandle QueueHandle

	// OverlappingJobs is precomputed once per PAF run (pkg/dagprop.InitOverlap)
	// for the feasibility-interval variants: other jobs whose
	// [release, deadline) window can overlap this job's.
	OverlappingJobs []*JobRun
}

type intervalList = []interval.Interval

// NewJobRun builds the initial per-run state for a job: DAG bounds default
// to the raw release/deadline (callers running a DAG-aware variant then
// call pkg/dagprop.PrepDAG to tighten them), SuccCount is the number of
// successors, and the job starts unqueued.
func NewJobRun(spec *JobSpec) *JobRun {
	return &JobRun{
		Spec:        spec,
		DAGRelease:  spec.Release,
		DAGDeadline: spec.Deadline,
		SuccCount:   len(spec.Successors),
	}
}

// NewRunSet builds one JobRun per spec, in input order, indexed by a map
// from spec to run so that predecessor/successor lookups during DAG
// propagation can cross from JobSpec to the current iteration's JobRun.
func NewRunSet(specs []*JobSpec) (runs []*JobRun, bySpec map[*JobSpec]*JobRun) {
	runs = make([]*JobRun, len(specs))
	bySpec = make(map[*JobSpec]*JobRun, len(specs))
	for i, s := range specs {
		r := NewJobRun(s)
		runs[i] = r
		bySpec[s] = r
	}
	return runs, bySpec
}

// InitFeasibility sets each job's feasibility list to the single interval
// [release, deadline-cost+1) on every core (spec.md §4.3), and initializes
// the FeasCores/FeasRegion summaries.
func InitFeasibility(runs []*JobRun, cores int) {
	for _, j := range runs {
		j.Feasibility = make([]intervalList, cores)
		width := j.Spec.Deadline - j.Spec.Cost + 1 - j.Spec.Release
		for c := 0; c < cores; c++ {
			if width > 0 {
				j.Feasibility[c] = intervalList{{Start: j.Spec.Release, End: j.Spec.Deadline - j.Spec.Cost + 1}}
			}
		}
		if width > 0 {
			j.FeasCores = cores
			j.FeasRegion = width * cores
		} else {
			j.FeasCores = 0
			j.FeasRegion = 0
		}
	}
}

// Allocation is the output triple (job, core, start time).
type Allocation struct {
	Job   *JobRun
	Core  int
	Start int
}

// End returns the exclusive end of this allocation's occupation interval.
func (a Allocation) End() int {
	return a.Start + a.Job.Spec.Cost
}

// Schedule maps core index to the ordered sequence of allocations placed
// on it. Insertion order carries no semantic meaning.
type Schedule map[int][]Allocation

// NewSchedule returns an empty schedule with one (empty) entry per core.
func NewSchedule(cores int) Schedule {
	s := make(Schedule, cores)
	for c := 0; c < cores; c++ {
		s[c] = nil
	}
	return s
}
