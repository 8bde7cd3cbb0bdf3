// Package milpexport writes the optional MILP encoding of a job set to a
// solver-neutral .lp file (spec.md §1's "(b) an optional MILP encoding
// written to an external solver's file format"), grounded on
// original_source/model.py's make_gurobi_milp. The solver itself is an
// external collaborator; this package only produces its input file.
//
// model.py's formulation uses Gurobi's general min_/max_ operators over
// pairs of start/finish times, which have no representation in the
// standard linear .lp file format any non-Gurobi-API solver reads. This
// package instead emits the equivalent linear disjunctive form: for every
// pair of jobs whose windows can overlap, a precedence binary y[i,j]
// selects which of the two orderings applies per shared core, enforced
// with a big-M constraint, exactly the feasible region model.py's
// constraint carves out.
package milpexport

import (
	"fmt"
	"io"

	"pafsched/pkg/jobmodel"
)

// BigM returns a safe big-M constant: the sum of every job's cost plus the
// largest deadline, plus one, large enough to make a disabled disjunct
// vacuous.
func BigM(specs []*jobmodel.JobSpec) int {
	sum, maxDeadline := 0, 0
	for _, s := range specs {
		sum += s.Cost
		if s.Deadline > maxDeadline {
			maxDeadline = s.Deadline
		}
	}
	return sum + maxDeadline + 1
}

func relevant(a, b *jobmodel.JobSpec) bool {
	return !(a.Release >= b.Deadline || b.Release >= a.Deadline)
}

// Write emits a CPLEX-LP-format model for scheduling specs onto cores
// cores, suitable for any standard MILP solver. name appears only in the
// leading comment line of the model.
func Write(w io.Writer, specs []*jobmodel.JobSpec, cores int, name string) error {
	n := len(specs)
	bw := &lpWriter{w: w}

	bw.line("\\ %s: %d jobs, %d cores", name, n, cores)
	bw.line("Minimize")
	bw.line(" obj: 0")
	bw.line("Subject To")

	// jobfinish: f_i - s_i = cost_i
	for i, s := range specs {
		bw.line(" jobfinish_%d: f%d - s%d = %d", i, i, i, s.Cost)
	}
	// jobassign: sum_k x_i_k = 1
	for i := range specs {
		bw.lineWithTerms(fmt.Sprintf("jobassign_%d", i), xTerms(i, cores), "=", 1)
	}
	// jobstart: s_i >= release_i
	for i, s := range specs {
		bw.line(" jobstart_%d: s%d >= %d", i, i, s.Release)
	}
	// jobdeadline: f_i <= deadline_i
	for i, s := range specs {
		bw.line(" jobdeadline_%d: f%d <= %d", i, i, s.Deadline)
	}

	m := BigM(specs)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !relevant(specs[i], specs[j]) {
				continue
			}
			for k := 0; k < cores; k++ {
				// i before j on core k: f_i <= s_j + M*(1-y_ij) + M*(2-x_ik-x_jk)
				bw.line(" seq_%d_%d_%d_a: f%d - s%d + %d y%d_%d + %d x%d_%d + %d x%d_%d <= %d",
					i, j, k, i, j, m, i, j, m, i, k, m, j, k, 3*m)
				// j before i on core k: f_j <= s_i + M*y_ij + M*(2-x_ik-x_jk)
				bw.line(" seq_%d_%d_%d_b: f%d - s%d - %d y%d_%d + %d x%d_%d + %d x%d_%d <= %d",
					j, i, k, j, i, m, i, j, m, i, k, m, j, k, 2*m)
			}
		}
	}

	bw.line("Bounds")
	for i := range specs {
		bw.line(" s%d >= 0", i)
		bw.line(" f%d >= 0", i)
	}
	bw.line("Binaries")
	for i := range specs {
		for k := 0; k < cores; k++ {
			bw.line(" x%d_%d", i, k)
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if relevant(specs[i], specs[j]) {
				bw.line(" y%d_%d", i, j)
			}
		}
	}
	bw.line("End")

	return bw.err
}

func xTerms(i, cores int) []string {
	terms := make([]string, cores)
	for k := 0; k < cores; k++ {
		terms[k] = fmt.Sprintf("x%d_%d", i, k)
	}
	return terms
}

type lpWriter struct {
	w   io.Writer
	err error
}

func (b *lpWriter) line(format string, args ...interface{}) {
	if b.err != nil {
		return
	}
	_, b.err = fmt.Fprintf(b.w, format+"\n", args...)
}

func (b *lpWriter) lineWithTerms(name string, terms []string, op string, rhs int) {
	if b.err != nil {
		return
	}
	expr := ""
	for i, t := range terms {
		if i > 0 {
			expr += " +"
		} else {
			expr += " "
		}
		expr += t
	}
	_, b.err = fmt.Fprintf(b.w, " %s:%s %s %d\n", name, expr, op, rhs)
}
