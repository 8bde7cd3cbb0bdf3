package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pafsched/pkg/storage"
)

type submitRunRequest struct {
	Heuristic string `form:"heuristic" binding:"required"`
	Format    string `form:"format" binding:"required"`
	Cores     int    `form:"cores" binding:"required"`
}

// submitRun accepts an uploaded task-set CSV plus heuristic/cores
// parameters, stores the file, creates a queued Run record, and pushes it
// onto the work queue for a worker to pick up.
func (s *Server) submitRun(c *gin.Context) {
	var req submitRunRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.ValidateHeuristic(req.Heuristic); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.ValidateFormat(req.Format); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.ValidateCores(req.Cores); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, _, err := c.Request.FormFile("taskset")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskset file is required"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	id := uuid.NewString()
	sourceKey := fmt.Sprintf("runs/%s/source.csv", id)
	if err := s.blobStore.Put(c.Request.Context(), sourceKey, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store task set"})
		return
	}

	now := time.Now().UTC()
	run := &storage.Run{
		ID:        id,
		Heuristic: req.Heuristic,
		Cores:     req.Cores,
		Status:    storage.RunStatusQueued,
		SourceKey: sourceKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.runStore.CreateRun(c.Request.Context(), run); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create run"})
		return
	}

	partition := fmt.Sprintf("%x", []byte(id)[0]%4)
	if err := s.queue.Push(c.Request.Context(), partition, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue run"})
		return
	}

	c.JSON(http.StatusAccepted, run)
}

func (s *Server) listRuns(c *gin.Context) {
	status := storage.RunStatus(c.Query("status"))
	runs, err := s.runStore.ListRuns(c.Request.Context(), status, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) getRun(c *gin.Context) {
	run, err := s.runStore.GetRun(c.Request.Context(), c.Param("id"))
	if err == storage.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) getRunSchedule(c *gin.Context) {
	run, err := s.runStore.GetRun(c.Request.Context(), c.Param("id"))
	if err == storage.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if run.Status != storage.RunStatusScheduled {
		c.JSON(http.StatusConflict, gin.H{"error": "run has no schedule", "status": run.Status})
		return
	}
	data, err := s.blobStore.Get(c.Request.Context(), run.ScheduleKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/csv", data)
}

func (s *Server) getLeader(c *gin.Context) {
	if s.coordinator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "coordination not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coordinator": "etcd"})
}
