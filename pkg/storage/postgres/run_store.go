// Package postgres is a GORM-backed storage.RunStore, grounded on
// skeenode/pkg/storage/postgres/job_store.go's connection setup and
// fluent-query idiom.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pafsched/pkg/storage"
)

// runRecord is the GORM row shape for storage.Run.
type runRecord struct {
	ID          string `gorm:"primaryKey"`
	Heuristic   string
	Cores       int
	Status      string `gorm:"index"`
	Unassigned  int
	Iterations  int
	SourceKey   string
	ScheduleKey string
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (runRecord) TableName() string { return "runs" }

func toRecord(r *storage.Run) *runRecord {
	return &runRecord{
		ID:          r.ID,
		Heuristic:   r.Heuristic,
		Cores:       r.Cores,
		Status:      string(r.Status),
		Unassigned:  r.Unassigned,
		Iterations:  r.Iterations,
		SourceKey:   r.SourceKey,
		ScheduleKey: r.ScheduleKey,
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromRecord(rec *runRecord) *storage.Run {
	return &storage.Run{
		ID:          rec.ID,
		Heuristic:   rec.Heuristic,
		Cores:       rec.Cores,
		Status:      storage.RunStatus(rec.Status),
		Unassigned:  rec.Unassigned,
		Iterations:  rec.Iterations,
		SourceKey:   rec.SourceKey,
		ScheduleKey: rec.ScheduleKey,
		Error:       rec.Error,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

// RunStore is a GORM/Postgres-backed storage.RunStore.
type RunStore struct {
	db *gorm.DB
}

// NewRunStore opens the GORM connection and auto-migrates the runs table.
func NewRunStore(connString string) (*RunStore, error) {
	config := &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Info),
		PrepareStmt: true,
	}

	db, err := gorm.Open(postgres.Open(connString), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&runRecord{}); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return &RunStore{db: db}, nil
}

func (s *RunStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateRun persists a new run record.
func (s *RunStore) CreateRun(ctx context.Context, run *storage.Run) error {
	result := s.db.WithContext(ctx).Create(toRecord(run))
	if result.Error != nil {
		return fmt.Errorf("failed to create run: %w", result.Error)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	var rec runRecord
	result := s.db.WithContext(ctx).First(&rec, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, result.Error
	}
	return fromRecord(&rec), nil
}

// UpdateRun writes back status/result fields for an existing run.
func (s *RunStore) UpdateRun(ctx context.Context, run *storage.Run) error {
	run.UpdatedAt = time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&runRecord{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":       string(run.Status),
			"unassigned":   run.Unassigned,
			"iterations":   run.Iterations,
			"schedule_key": run.ScheduleKey,
			"error":        run.Error,
			"updated_at":   run.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListRuns lists runs, optionally filtered by status, newest first.
func (s *RunStore) ListRuns(ctx context.Context, status storage.RunStatus, limit int) ([]*storage.Run, error) {
	var recs []runRecord
	query := s.db.WithContext(ctx).Order("created_at desc").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if result := query.Find(&recs); result.Error != nil {
		return nil, fmt.Errorf("failed to list runs: %w", result.Error)
	}
	runs := make([]*storage.Run, len(recs))
	for i := range recs {
		runs[i] = fromRecord(&recs[i])
	}
	return runs, nil
}
