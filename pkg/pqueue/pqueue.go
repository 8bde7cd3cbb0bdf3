// Package pqueue implements the live-rescoring priority queue used to
// drive job-consideration order (spec.md §4.2), grounded on
// original_source/order.py's ConsiderationOrder. Back-references from a
// job into its queue entry are replaced with a generation-counter handle
// (spec.md §9's Design Notes) instead of a Python-style weak back-pointer,
// so the queue never reaches into job state to invalidate an entry.
package pqueue

import (
	"container/heap"

	"pafsched/pkg/jobmodel"
)

// Score is the ascending-compared tuple key; callers build one per job per
// add/update from whatever fields the active heuristic variant scores on.
// The final element should be the job id so ties never occur (spec.md §4.6).
type Score []int64

// Less reports whether s sorts before other, lexicographically.
func (s Score) Less(other Score) bool {
	for i := 0; i < len(s) && i < len(other); i++ {
		if s[i] != other[i] {
			return s[i] < other[i]
		}
	}
	return len(s) < len(other)
}

type entry struct {
	score  Score
	handle jobmodel.QueueHandle
	job    *jobmodel.JobRun
	index  int
}

type innerHeap []*entry

func (h innerHeap) Len() int            { return len(h) }
func (h innerHeap) Less(i, j int) bool  { return h[i].score.Less(h[j].score) }
func (h innerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *innerHeap) Push(x interface{}) { e := x.(*entry); e.index = len(*h); *h = append(*h, e) }
func (h *innerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Queue is a min-ordered priority queue keyed by Score, with stale-entry
// skipping via jobmodel.QueueHandle so update() never needs to locate or
// remove the job's prior entry in the heap.
type Queue struct {
	h       innerHeap
	nextGen jobmodel.QueueHandle
}

// New returns an empty queue.
func New() *Queue {
	q := &Queue{}
	heap.Init(&q.h)
	return q
}

// Add pushes job with the given score and marks it queued under a fresh
// handle (spec.md §4.2's add).
func (q *Queue) Add(job *jobmodel.JobRun, score Score) {
	q.nextGen++
	h := q.nextGen
	job.QueueHandle = h
	heap.Push(&q.h, &entry{score: score, handle: h, job: job})
}

// Update invalidates job's prior live entry (by advancing its handle so any
// stale entry in the heap no longer matches) and pushes a fresh entry with
// the new score (spec.md §4.2's update). Safe to call whether or not job is
// currently queued.
func (q *Queue) Update(job *jobmodel.JobRun, score Score) {
	q.Add(job, score)
}

// Next pops the minimum-score live entry, skipping any stale entries left
// behind by Update, and clears the returned job's QueueHandle to mark it
// not-queued. Returns nil once the queue is exhausted of live entries.
func (q *Queue) Next() *jobmodel.JobRun {
	for q.h.Len() > 0 {
		e := heap.Pop(&q.h).(*entry)
		if e.handle != e.job.QueueHandle {
			continue // stale: superseded by a later Update
		}
		e.job.QueueHandle = 0
		return e.job
	}
	return nil
}

// Len returns the number of entries still in the heap, live and stale.
func (q *Queue) Len() int { return q.h.Len() }
