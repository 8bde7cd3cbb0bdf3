package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pafsched/pkg/api/middleware"
	"pafsched/pkg/coordination"
	"pafsched/pkg/storage"
)

// Server encapsulates the HTTP API server and its dependencies.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server

	runStore    storage.RunStore
	blobStore   storage.ResultBlobStore
	queue       storage.Queue
	coordinator coordination.Coordinator
	validator   *middleware.Validator
}

// Config holds API server configuration.
type Config struct {
	Port        string
	RunStore    storage.RunStore
	BlobStore   storage.ResultBlobStore
	Queue       storage.Queue
	Coordinator coordination.Coordinator
	AuthConfig  middleware.AuthConfig
}

// NewServer creates a new API server with all dependencies.
func NewServer(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.TracingMiddleware("pafsched-api"))
	router.Use(middleware.MetricsMiddleware())
	router.Use(requestLogger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(middleware.BodySizeLimitMiddleware(16 << 20))

	s := &Server{
		router:      router,
		runStore:    cfg.RunStore,
		blobStore:   cfg.BlobStore,
		queue:       cfg.Queue,
		coordinator: cfg.Coordinator,
		validator:   middleware.NewValidator(middleware.DefaultValidatorConfig()),
	}

	s.registerRoutes(cfg.AuthConfig)

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	log.Printf("[API] Starting server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes(authCfg middleware.AuthConfig) {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authCfg))
	{
		runs := v1.Group("/runs")
		{
			runs.POST("", s.submitRun)
			runs.GET("", s.listRuns)
			runs.GET("/:id", s.getRun)
			runs.GET("/:id/schedule", s.getRunSchedule)
		}

		cluster := v1.Group("/cluster")
		{
			cluster.GET("/leader", s.getLeader)
		}
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log.Printf("[API] %s %s %d %v", c.Request.Method, path, status, latency)
	}
}

// healthCheck returns server health status with dependency checks.
func (s *Server) healthCheck(c *gin.Context) {
	deps := map[string]bool{
		"postgres": s.runStore != nil,
		"redis":    s.queue != nil,
		"etcd":     s.coordinator != nil,
		"s3":       s.blobStore != nil,
	}

	healthy := true
	for _, ok := range deps {
		if !ok {
			healthy = false
			break
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":       status,
		"dependencies": deps,
		"timestamp":    time.Now().UTC(),
	})
}
