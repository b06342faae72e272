package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumepro/internal/shared/telemetry"
)

// ErrorBody is the payload every failed request carries under "error".
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs the failure and aborts with the envelope. Message is shown to the
// user as is, so callers pass human-readable text.
func Error(c *gin.Context, status int, code, message string, details any) {
	logFailure(c, status, code, message)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

func logFailure(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"route":      c.FullPath(),
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
		fields["is_guest"] = c.GetBool("isGuest")
	}
	switch {
	case status >= http.StatusInternalServerError:
		telemetry.Error("http.error", fields)
	case status == http.StatusNotFound:
		telemetry.Info("http.error", fields)
	default:
		telemetry.Warn("http.error", fields)
	}
}
