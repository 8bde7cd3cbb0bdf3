// Package report writes schedule CSVs and validates returned schedules
// against the invariants a heuristic bug would violate (spec.md §6's
// schedule output and §7's "invariant violation in validation" error kind),
// grounded on original_source/schedule.py's show and validate.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"pafsched/pkg/jobmodel"
)

var header = []string{"Job", "Core", "Start", "End", "Release", "Deadline", "Cost", "Task", "Job-of-Task"}

// WriteCSV writes one row per allocation, sorted by job id, two-decimal
// fixed-point for time fields (spec.md §6).
func WriteCSV(w io.Writer, schedule jobmodel.Schedule) error {
	var allocs []jobmodel.Allocation
	for _, core := range schedule {
		allocs = append(allocs, core...)
	}
	sort.Slice(allocs, func(i, j int) bool { return allocs[i].Job.Spec.ID < allocs[j].Job.Spec.ID })

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, a := range allocs {
		spec := a.Job.Spec
		row := []string{
			fmt.Sprintf("%d", spec.ID),
			fmt.Sprintf("%d", a.Core),
			fixed(a.Start),
			fixed(a.End()),
			fixed(spec.Release),
			fixed(spec.Deadline),
			fixed(spec.Cost),
			fmt.Sprintf("%d", spec.TaskID),
			fmt.Sprintf("%d", spec.InstanceOfTask),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fixed(v int) string {
	return fmt.Sprintf("%d.00", v)
}

// Violation describes one broken invariant (spec.md §8's invariants 1-4).
type Violation struct {
	Kind    string
	Detail  string
}

func (v Violation) Error() string { return fmt.Sprintf("%s: %s", v.Kind, v.Detail) }

// Validate checks a schedule plus its reported unassigned set against every
// job in the input and returns every invariant violation found (spec.md
// §8, invariants 1-4). An empty result means the schedule is valid.
func Validate(jobs []*jobmodel.JobSpec, schedule jobmodel.Schedule, unassigned []*jobmodel.JobRun) []Violation {
	var violations []Violation

	seen := make(map[*jobmodel.JobSpec]bool, len(jobs))
	var allocOf = make(map[*jobmodel.JobSpec]jobmodel.Allocation, len(jobs))

	for core, allocs := range schedule {
		sorted := append([]jobmodel.Allocation(nil), allocs...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
		for i, a := range sorted {
			if seen[a.Job.Spec] {
				violations = append(violations, Violation{"duplicate-placement", fmt.Sprintf("job %d placed more than once", a.Job.Spec.ID)})
			}
			seen[a.Job.Spec] = true
			allocOf[a.Job.Spec] = a

			if a.Start < a.Job.Spec.Release || a.End() > a.Job.Spec.Deadline {
				violations = append(violations, Violation{"window-violation", fmt.Sprintf("job %d start %d end %d outside [%d,%d)", a.Job.Spec.ID, a.Start, a.End(), a.Job.Spec.Release, a.Job.Spec.Deadline)})
			}
			if i > 0 && sorted[i-1].End() > a.Start {
				violations = append(violations, Violation{"overlap", fmt.Sprintf("core %d: job %d overlaps job %d", core, sorted[i-1].Job.Spec.ID, a.Job.Spec.ID)})
			}
		}
	}

	for _, r := range unassigned {
		if seen[r.Spec] {
			violations = append(violations, Violation{"double-counted", fmt.Sprintf("job %d is both scheduled and unassigned", r.Spec.ID)})
		}
		seen[r.Spec] = true
	}

	for _, j := range jobs {
		if !seen[j] {
			violations = append(violations, Violation{"missing", fmt.Sprintf("job %d is neither scheduled nor unassigned", j.ID)})
		}
	}

	for _, j := range jobs {
		a, ok := allocOf[j]
		if !ok {
			continue
		}
		for _, p := range j.Predecessors {
			pa, ok := allocOf[p]
			if !ok {
				continue
			}
			if pa.End() > a.Start {
				violations = append(violations, Violation{"precedence-violation", fmt.Sprintf("job %d (pred of %d) ends at %d after successor starts at %d", p.ID, j.ID, pa.End(), a.Start)})
			}
		}
	}

	return violations
}
