// Package storage defines the persistence interfaces the fleet depends on,
// grounded on skeenode/pkg/storage/interface.go: a run-record store, a
// work queue of task-set submissions, and a blob store for schedule/report
// artifacts too large to keep in the relational row.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup finds no matching record.
var ErrNotFound = errors.New("storage: not found")

// ErrConflict is returned when a write would violate a uniqueness or
// optimistic-concurrency constraint.
var ErrConflict = errors.New("storage: conflict")

// RunStatus is the lifecycle state of a scheduling run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusScheduled RunStatus = "scheduled"
	RunStatusNoSol     RunStatus = "nosol"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one scheduling request: a task-set file run through one heuristic
// at a given core count, and its terminal outcome.
type Run struct {
	ID         string
	Heuristic  string
	Cores      int
	Status     RunStatus
	Unassigned int
	Iterations int
	SourceKey  string // object key of the uploaded task-set CSV
	ScheduleKey string // object key of the resulting schedule CSV, once done
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RunStore persists Run records.
type RunStore interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	UpdateRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, status RunStatus, limit int) ([]*Run, error)
}

// QueueMessage is one unit of work: a run waiting to be picked up by a
// worker.
type QueueMessage struct {
	ID    string
	RunID string
}

// Queue is a work queue of pending runs, grounded on
// skeenode/pkg/storage/redis/queue_store.go's Redis Streams usage.
type Queue interface {
	Push(ctx context.Context, partition string, runID string) error
	Pop(ctx context.Context, partition, consumer string) (*QueueMessage, error)
	Ack(ctx context.Context, partition string, msg *QueueMessage) error
	EnsureGroup(ctx context.Context, partition string) error
	Depth(ctx context.Context, partition string) (int64, error)
}

// ResultBlobStore persists uploaded task-set CSVs and generated schedule/
// report artifacts too large or too infrequently read to belong in the
// relational row.
type ResultBlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}
