package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ValidatorConfig holds validation configuration for run submissions.
type ValidatorConfig struct {
	MaxBodySize      int64    // Maximum request body size in bytes
	AllowedFormats   []string // Recognised task-set CSV formats
	AllowedHeuristic []string // Valid --heuristic values
	MaxCoresPerRun   int
}

// DefaultValidatorConfig returns safe defaults.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MaxBodySize:      16 << 20, // 16MB, enough for large DAG task-set CSVs
		AllowedFormats:   []string{"flat", "dag"},
		AllowedHeuristic: []string{"backfill", "feasint"},
		MaxCoresPerRun:   256,
	}
}

// Validator performs request validation.
type Validator struct {
	config ValidatorConfig
}

// NewValidator creates a new validator with the given config.
func NewValidator(config ValidatorConfig) *Validator {
	return &Validator{config: config}
}

// ValidateHeuristic checks that heuristic names a supported driver.
func (v *Validator) ValidateHeuristic(heuristic string) error {
	for _, allowed := range v.config.AllowedHeuristic {
		if heuristic == allowed {
			return nil
		}
	}
	return &ValidationError{Field: "heuristic", Message: "unrecognised heuristic name"}
}

// ValidateFormat checks that format names a supported task-set CSV layout.
func (v *Validator) ValidateFormat(format string) error {
	for _, allowed := range v.config.AllowedFormats {
		if format == allowed {
			return nil
		}
	}
	return &ValidationError{Field: "format", Message: "unrecognised task-set format"}
}

// ValidateCores checks the requested core count is positive and bounded.
func (v *Validator) ValidateCores(cores int) error {
	if cores <= 0 {
		return &ValidationError{Field: "cores", Message: "core count must be positive"}
	}
	if cores > v.config.MaxCoresPerRun {
		return &ValidationError{Field: "cores", Message: "core count exceeds the configured maximum"}
	}
	return nil
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// BodySizeLimitMiddleware limits request body size.
func BodySizeLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "request body too large",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Next()
	}
}

// RequestIDMiddleware adds a request ID for tracing.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = "req-" + uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
