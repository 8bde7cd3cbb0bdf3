// Package taskset loads task sets from CSV and expands them into job sets
// over the hyperperiod (spec.md §6's "out of scope, specified only by the
// interfaces they cross"), grounded on original_source/load.py.
package taskset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math/big"

	"pafsched/pkg/jobmodel"
)

// Segment is one DAG task's sub-job: a unit of work with an intra-task
// precedence list referencing sibling segment ids.
type Segment struct {
	ID           int
	WCET         int
	Predecessors []int
}

// Task is one row of a task set: a periodic release of jobs. Segments is
// nil for a flat (non-DAG) task; non-nil (possibly empty) for a DAG task.
type Task struct {
	ID       int
	Period   int
	Deadline int // only meaningful for DAG tasks; unused in job expansion, matching the source's jobs()
	Util     float64
	WCET     int
	Segments []Segment
}

// TaskSet is one parsed input row (flat) or one whole DAG file.
type TaskSet struct {
	Tasks       []Task
	TotalUtil   float64
	PercUtil    float64
	Schedulable bool
}

// Hyperperiod returns the LCM of every task's period (spec.md §6).
func (ts TaskSet) Hyperperiod() int {
	if len(ts.Tasks) == 0 {
		return 0
	}
	h := big.NewInt(int64(ts.Tasks[0].Period))
	for _, t := range ts.Tasks[1:] {
		h = lcm(h, big.NewInt(int64(t.Period)))
	}
	return int(h.Int64())
}

func lcm(a, b *big.Int) *big.Int {
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	if g.Sign() == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Div(a, g)
	return out.Mul(out, b)
}

// LoadFlat parses the flat (non-DAG) CSV format: each row is one task set,
// `[[(id, period, util, wcet), …], total_util, perc_util, schedulable?]`.
func LoadFlat(r io.Reader) ([]TaskSet, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("taskset: reading flat CSV: %w", err)
	}
	out := make([]TaskSet, 0, len(rows))
	for i, row := range rows {
		ts, err := parseFlatRow(row)
		if err != nil {
			return nil, fmt.Errorf("taskset: row %d: %w", i, err)
		}
		out = append(out, ts)
	}
	return out, nil
}

func parseFlatRow(row []string) (TaskSet, error) {
	if len(row) < 3 {
		return TaskSet{}, fmt.Errorf("expected at least 3 fields, got %d", len(row))
	}
	tasksLit, err := parsePyLiteral(row[0])
	if err != nil {
		return TaskSet{}, err
	}
	tupleList, ok := tasksLit.([]interface{})
	if !ok {
		return TaskSet{}, fmt.Errorf("field 0: expected a list of task tuples")
	}
	tasks := make([]Task, 0, len(tupleList))
	for _, item := range tupleList {
		tuple, ok := item.([]interface{})
		if !ok || len(tuple) != 4 {
			return TaskSet{}, fmt.Errorf("field 0: expected 4-tuples (id, period, util, wcet)")
		}
		id, err := asInt(tuple[0])
		if err != nil {
			return TaskSet{}, err
		}
		period, err := asInt(tuple[1])
		if err != nil {
			return TaskSet{}, err
		}
		util, err := asFloat(tuple[2])
		if err != nil {
			return TaskSet{}, err
		}
		wcet, err := asInt(tuple[3])
		if err != nil {
			return TaskSet{}, err
		}
		tasks = append(tasks, Task{ID: id, Period: period, Util: util, WCET: wcet})
	}

	totalLit, err := parsePyLiteral(row[1])
	if err != nil {
		return TaskSet{}, err
	}
	total, err := asFloat(totalLit)
	if err != nil {
		return TaskSet{}, err
	}
	percLit, err := parsePyLiteral(row[2])
	if err != nil {
		return TaskSet{}, err
	}
	perc, err := asFloat(percLit)
	if err != nil {
		return TaskSet{}, err
	}

	schedulable := false
	if len(row) >= 4 {
		schedLit, err := parsePyLiteral(row[3])
		if err != nil {
			return TaskSet{}, err
		}
		schedulable, err = asBool(schedLit)
		if err != nil {
			return TaskSet{}, err
		}
	}

	return TaskSet{Tasks: tasks, TotalUtil: total, PercUtil: perc, Schedulable: schedulable}, nil
}

// LoadDAG parses the DAG CSV format: rows tagged T (introduce a task) or V
// (declare a segment and its intra-task predecessors).
func LoadDAG(r io.Reader) (TaskSet, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return TaskSet{}, fmt.Errorf("taskset: reading DAG CSV: %w", err)
	}
	var tasks []Task
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		switch row[0] {
		case "T":
			if len(row) < 4 {
				return TaskSet{}, fmt.Errorf("taskset: row %d: T row needs id,period,deadline", i)
			}
			id, err1 := atoiAll(row[1])
			period, err2 := atoiAll(row[2])
			deadline, err3 := atoiAll(row[3])
			if err := firstErr(err1, err2, err3); err != nil {
				return TaskSet{}, fmt.Errorf("taskset: row %d: %w", i, err)
			}
			tasks = append(tasks, Task{ID: id, Period: period, Deadline: deadline})
		case "V":
			if len(row) < 4 {
				return TaskSet{}, fmt.Errorf("taskset: row %d: V row needs task_id,segment_id,wcet,...", i)
			}
			if len(tasks) == 0 {
				return TaskSet{}, fmt.Errorf("taskset: row %d: V row before any T row", i)
			}
			tid, err1 := atoiAll(row[1])
			if err1 != nil {
				return TaskSet{}, fmt.Errorf("taskset: row %d: %w", i, err1)
			}
			cur := &tasks[len(tasks)-1]
			if cur.ID != tid {
				return TaskSet{}, fmt.Errorf("taskset: row %d: V row task_id %d does not match current task %d", i, tid, cur.ID)
			}
			segID, err2 := atoiAll(row[2])
			wcet, err3 := atoiAll(row[3])
			if err := firstErr(err2, err3); err != nil {
				return TaskSet{}, fmt.Errorf("taskset: row %d: %w", i, err)
			}
			preds := make([]int, 0, len(row)-4)
			for _, f := range row[4:] {
				p, err := atoiAll(f)
				if err != nil {
					return TaskSet{}, fmt.Errorf("taskset: row %d: %w", i, err)
				}
				preds = append(preds, p)
			}
			cur.Segments = append(cur.Segments, Segment{ID: segID, WCET: wcet, Predecessors: preds})
		default:
			return TaskSet{}, fmt.Errorf("taskset: row %d: unrecognised row tag %q", i, row[0])
		}
	}
	for i := range tasks {
		total := 0
		for _, s := range tasks[i].Segments {
			total += s.WCET
		}
		tasks[i].WCET = total
	}
	return TaskSet{Tasks: tasks, Schedulable: false}, nil
}

// LoadAuto reads data once and dispatches to LoadFlat or LoadDAG based on
// the first non-empty field of the first row (spec.md §6: "Two recognised
// formats, auto-detected by the first non-empty field"): "T" or "V" means
// DAG, anything else means flat.
func LoadAuto(data []byte) (sets []TaskSet, isDAG bool, err error) {
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("taskset: reading CSV: %w", err)
	}
	isDAG = false
	for _, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		isDAG = row[0] == "T" || row[0] == "V"
		break
	}
	if isDAG {
		ts, err := LoadDAG(bytes.NewReader(data))
		if err != nil {
			return nil, true, err
		}
		return []TaskSet{ts}, true, nil
	}
	flat, err := LoadFlat(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}
	return flat, false, nil
}

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func atoiAll(s string) (int, error) {
	v, err := parsePyLiteral(s)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}

// Expand generates the job set for a task set over [0, hyperperiod): one
// job release every task.Period, with cost = task.WCET (or, for a DAG
// task, one job per segment with that segment's own precedence edges
// restricted to sibling jobs from the same release). Deadline is always
// release + task.Period, matching original_source/load.py's jobs()
// (the DAG task's own Deadline field is carried on Task for reporting but
// is not used to bound job deadlines, following the source exactly).
func Expand(ts TaskSet, hyperperiod int) []*jobmodel.JobSpec {
	var out []*jobmodel.JobSpec
	nextID := 0
	for _, t := range ts.Tasks {
		for rel := 0; rel < hyperperiod; rel += t.Period {
			if len(t.Segments) > 0 {
				out = append(out, expandDAGRelease(t, rel, &nextID)...)
			} else {
				out = append(out, &jobmodel.JobSpec{
					ID:             nextID,
					Release:        rel,
					Deadline:       rel + t.Period,
					Cost:           t.WCET,
					TaskID:         t.ID,
					InstanceOfTask: rel / t.Period,
				})
				nextID++
			}
		}
	}
	return out
}

func expandDAGRelease(t Task, rel int, nextID *int) []*jobmodel.JobSpec {
	specs := make([]*jobmodel.JobSpec, len(t.Segments))
	bySeg := make(map[int]*jobmodel.JobSpec, len(t.Segments))
	for i, seg := range t.Segments {
		s := &jobmodel.JobSpec{
			ID:             *nextID,
			Release:        rel,
			Deadline:       rel + t.Period,
			Cost:           seg.WCET,
			TaskID:         t.ID,
			InstanceOfTask: rel / t.Period,
		}
		*nextID++
		specs[i] = s
		bySeg[seg.ID] = s
	}
	for i, seg := range t.Segments {
		for _, predID := range seg.Predecessors {
			pred := bySeg[predID]
			specs[i].Predecessors = append(specs[i].Predecessors, pred)
			pred.Successors = append(pred.Successors, specs[i])
		}
	}
	return specs
}
