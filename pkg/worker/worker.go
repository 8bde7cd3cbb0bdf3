// Package worker implements the distributed fleet worker that drains
// queued scheduling runs (SPEC_FULL.md §2.4), grounded on
// skeenode-backend/pkg/executor/core.go's heartbeat/consume-loop shape:
// campaign for leadership of a queue partition, pop a run, download its
// task-set CSV, run the heuristic through PAF, persist the outcome, and
// upload the resulting artifact.
package worker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"pafsched/pkg/coordination"
	"pafsched/pkg/heuristic"
	"pafsched/pkg/metrics"
	"pafsched/pkg/paf"
	"pafsched/pkg/report"
	"pafsched/pkg/resilience"
	"pafsched/pkg/storage"
	"pafsched/pkg/taskset"
)

// Config wires a Worker to its dependencies.
type Config struct {
	Partition   string
	RunStore    storage.RunStore
	BlobStore   storage.ResultBlobStore
	Queue       storage.Queue
	Coordinator coordination.Coordinator
	Log         *zap.Logger

	HeartbeatInterval time.Duration
	PopTimeout        time.Duration
}

// Worker drains one queue partition, running scheduling jobs to completion
// and reporting their outcome.
type Worker struct {
	id     string
	cfg    Config
	log    *zap.Logger
	breaker *resilience.CircuitBreaker
}

// New returns a Worker with a generated ID and a circuit breaker guarding
// its blob-store uploads (SPEC_FULL.md §2.4: a flaky S3 degrades to
// skipped persistence rather than wedging the worker).
func New(cfg Config) *Worker {
	hostname, _ := os.Hostname()
	id := fmt.Sprintf("%s-%s", hostname, uuid.New().String()[:8])
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 5 * time.Second
	}
	if cfg.PopTimeout == 0 {
		cfg.PopTimeout = 2 * time.Second
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		id:      id,
		cfg:     cfg,
		log:     log.With(zap.String("worker_id", id)),
		breaker: resilience.NewCircuitBreaker("blob-store-upload", resilience.DefaultCircuitBreakerConfig()),
	}
}

// Run campaigns for leadership of the configured partition (so exactly one
// worker drains it at a time), then consumes until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.cfg.Queue.EnsureGroup(ctx, w.cfg.Partition); err != nil {
		w.log.Warn("failed to ensure consumer group", zap.Error(err))
	}

	var election coordination.Election
	if w.cfg.Coordinator != nil {
		election = w.cfg.Coordinator.NewElection("pafsched-worker-" + w.cfg.Partition)
		w.log.Info("campaigning for partition leadership")
		if err := election.Campaign(ctx, w.id); err != nil {
			return fmt.Errorf("worker: election campaign failed: %w", err)
		}
		defer election.Resign(context.Background())
		metrics.ActiveWorkers.Inc()
		defer metrics.ActiveWorkers.Dec()
	}

	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.heartbeat()
			}
		}
	}()

	w.log.Info("worker draining partition", zap.String("partition", w.cfg.Partition))
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			w.consumeOne(ctx)
		}
	}
}

func (w *Worker) heartbeat() {
	metrics.HeartbeatsSent.Inc()
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		metrics.WorkerCPUPercent.WithLabelValues(w.id).Set(pct[0])
	}
	if v, err := mem.VirtualMemory(); err == nil {
		metrics.WorkerMemoryPercent.WithLabelValues(w.id).Set(v.UsedPercent)
	}
}

// consumeOne pops at most one run and processes it to completion. A nil
// message (queue empty) or a pop error both back off briefly rather than
// busy-spinning.
func (w *Worker) consumeOne(ctx context.Context) {
	msg, err := w.cfg.Queue.Pop(ctx, w.cfg.Partition, w.id)
	if err != nil {
		w.log.Error("failed to pop from queue", zap.Error(err))
		time.Sleep(time.Second)
		return
	}
	if msg == nil {
		time.Sleep(200 * time.Millisecond)
		return
	}

	if err := w.process(ctx, msg.RunID); err != nil {
		w.log.Error("run processing failed", zap.String("run_id", msg.RunID), zap.Error(err))
	}

	if err := w.cfg.Queue.Ack(ctx, w.cfg.Partition, msg); err != nil {
		w.log.Error("failed to ack run", zap.String("run_id", msg.RunID), zap.Error(err))
	}
}

func (w *Worker) process(ctx context.Context, runID string) error {
	run, err := w.cfg.RunStore.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("fetching run: %w", err)
	}

	run.Status = storage.RunStatusRunning
	if err := w.cfg.RunStore.UpdateRun(ctx, run); err != nil {
		w.log.Warn("failed to mark run running", zap.Error(err))
	}

	started := time.Now()
	outcome, nosol, err := w.schedule(ctx, run)
	duration := time.Since(started).Seconds()

	switch {
	case err != nil:
		run.Status = storage.RunStatusFailed
		run.Error = err.Error()
		metrics.RecordRun(run.Heuristic, "failed", duration, 0, 0)
	case nosol:
		run.Status = storage.RunStatusNoSol
		run.Unassigned = len(outcome.Unassigned)
		run.Iterations = outcome.Iterations
		outcomeName := "give_up"
		if !outcome.GaveUp {
			outcomeName = "nosol"
		}
		metrics.RecordRun(run.Heuristic, outcomeName, duration, run.Unassigned, run.Iterations)
	default:
		run.Status = storage.RunStatusScheduled
		run.Iterations = outcome.Iterations
		scheduleKey := fmt.Sprintf("runs/%s/schedule.csv", run.ID)
		var buf bytes.Buffer
		if werr := report.WriteCSV(&buf, outcome.Schedule); werr != nil {
			return fmt.Errorf("writing schedule csv: %w", werr)
		}
		uploadErr := w.breaker.Execute(ctx, func() error {
			return w.cfg.BlobStore.Put(ctx, scheduleKey, buf.Bytes())
		})
		if uploadErr != nil {
			metrics.CircuitBreakerTrips.WithLabelValues("blob-store-upload").Inc()
			run.Status = storage.RunStatusFailed
			run.Error = uploadErr.Error()
		} else {
			run.ScheduleKey = scheduleKey
		}
		metrics.RecordRun(run.Heuristic, "scheduled", duration, 0, run.Iterations)
	}

	return w.cfg.RunStore.UpdateRun(ctx, run)
}

// schedule downloads the run's task-set CSV, runs the configured
// heuristic through PAF, and validates the result. nosol reports whether
// PAF terminated with a non-empty unassigned set (not an error: a
// heuristic giving up is an expected outcome, per spec.md §7).
func (w *Worker) schedule(ctx context.Context, run *storage.Run) (outcome paf.Outcome, nosol bool, err error) {
	data, err := w.cfg.BlobStore.Get(ctx, run.SourceKey)
	if err != nil {
		return paf.Outcome{}, false, fmt.Errorf("downloading task set: %w", err)
	}

	sets, isDAG, err := taskset.LoadAuto(data)
	if err != nil {
		return paf.Outcome{}, false, fmt.Errorf("parsing task set: %w", err)
	}
	if len(sets) == 0 {
		return paf.Outcome{}, false, fmt.Errorf("task set file contains no job sets")
	}

	ts := sets[0]
	specs := taskset.Expand(ts, ts.Hyperperiod())

	driver, err := heuristic.Select(run.Heuristic, isDAG)
	if err != nil {
		return paf.Outcome{}, false, err
	}

	outcome = paf.Run(specs, driver, run.Cores)
	if len(outcome.Unassigned) > 0 {
		return outcome, true, nil
	}

	if violations := report.Validate(specs, outcome.Schedule, outcome.Unassigned); len(violations) > 0 {
		return outcome, false, fmt.Errorf("%d invariant violations, first: %s", len(violations), violations[0].Error())
	}
	return outcome, false, nil
}
