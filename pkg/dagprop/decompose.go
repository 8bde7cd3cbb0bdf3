package dagprop

import "pafsched/pkg/jobmodel"

// ChainSegment records one original job's position within a merged chain
// produced by DecomposeLinearChains.
type ChainSegment struct {
	Spec  *jobmodel.JobSpec
	Order int
}

// Chain is a maximal run of jobs connected by single-predecessor/
// single-successor edges, merged into one pseudo-job for scheduling.
type Chain struct {
	Merged   *jobmodel.JobSpec
	Segments []ChainSegment
}

// DecomposeLinearChains finds maximal linear precedence chains (every
// interior job has exactly one predecessor and one successor, chain heads
// have zero or many-fanin predecessors, chain tails have zero or many-fanout
// successors) and merges each into a single pseudo-JobSpec whose cost is the
// sum of its segments' costs, release is the head's release, and deadline is
// the tail's deadline. This supplements the core DAG machinery with the
// limited-preemptive decomposition original_source/decomp.py performs:
// scheduling one pseudo-job instead of a chain of n removes (n-1) DAG edges
// from the propagation graph at the cost of treating the chain as
// non-preemptible internally, which is always safe since a chain's segments
// must run back-to-back to respect their own precedence edges tightly
// packed at the chain's natural slack.
//
// Jobs not on any chain (fan-in/fan-out greater than one, or isolated) are
// returned unchanged in Remaining.
func DecomposeLinearChains(specs []*jobmodel.JobSpec) (chains []*Chain, remaining []*jobmodel.JobSpec) {
	onChain := make(map[*jobmodel.JobSpec]bool, len(specs))

	isHead := func(s *jobmodel.JobSpec) bool {
		return len(s.Predecessors) != 1
	}
	isLink := func(s *jobmodel.JobSpec) bool {
		return len(s.Predecessors) == 1 && len(s.Predecessors[0].Successors) == 1
	}

	for _, s := range specs {
		if onChain[s] || !isHead(s) {
			continue
		}
		if len(s.Successors) != 1 {
			continue // isolated or fan-out head: not a chain
		}
		segs := []ChainSegment{{Spec: s, Order: 0}}
		onChain[s] = true
		cur := s
		for len(cur.Successors) == 1 && isLink(cur.Successors[0]) {
			cur = cur.Successors[0]
			segs = append(segs, ChainSegment{Spec: cur, Order: len(segs)})
			onChain[cur] = true
		}
		// A final link whose own successor count isn't 1 still belongs to
		// the chain; only multi-predecessor jobs break it.
		if len(cur.Successors) == 1 && len(cur.Successors[0].Predecessors) == 1 && !onChain[cur.Successors[0]] {
			tail := cur.Successors[0]
			segs = append(segs, ChainSegment{Spec: tail, Order: len(segs)})
			onChain[tail] = true
		}
		if len(segs) < 2 {
			onChain[s] = false
			continue
		}
		cost := 0
		for _, seg := range segs {
			cost += seg.Spec.Cost
		}
		head, tail := segs[0].Spec, segs[len(segs)-1].Spec
		merged := &jobmodel.JobSpec{
			ID:             head.ID,
			Release:        head.Release,
			Deadline:       tail.Deadline,
			Cost:           cost,
			Predecessors:   head.Predecessors,
			Successors:     tail.Successors,
			TaskID:         head.TaskID,
			InstanceOfTask: head.InstanceOfTask,
		}
		chains = append(chains, &Chain{Merged: merged, Segments: segs})
	}

	for _, s := range specs {
		if !onChain[s] {
			remaining = append(remaining, s)
		}
	}
	return chains, remaining
}

// Expand takes the chain's merged allocation and returns one allocation per
// original segment, packed back-to-back starting at the merged start time
// in chain order (original_source/decomp.py's decompose_restore).
func (c *Chain) Expand(core, mergedStart int) []jobmodel.Allocation {
	allocs := make([]jobmodel.Allocation, len(c.Segments))
	t := mergedStart
	for i, seg := range c.Segments {
		allocs[i] = jobmodel.Allocation{
			Job:   jobmodel.NewJobRun(seg.Spec),
			Core:  core,
			Start: t,
		}
		t += seg.Spec.Cost
	}
	return allocs
}
