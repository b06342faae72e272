package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resumepro/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	RecordIDKey   = "recordId"
	FunctionKey   = "function"
	WizardStepKey = "wizardStep"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"is_guest":    IsGuest(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		for _, key := range []string{RecordIDKey, FunctionKey, WizardStepKey} {
			if val, ok := c.Get(key); ok {
				fields[logFieldName(key)] = val
			}
		}
		telemetry.Info("request.complete", fields)
	}
}

func logFieldName(key string) string {
	switch key {
	case RecordIDKey:
		return "record_id"
	case WizardStepKey:
		return "wizard_step"
	default:
		return key
	}
}
