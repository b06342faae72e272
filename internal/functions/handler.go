package functions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumepro/internal/assistant"
	"resumepro/internal/gateway"
	"resumepro/internal/scoring"
	"resumepro/internal/shared/server/middleware"
	"resumepro/internal/shared/server/respond"
	"resumepro/internal/shared/telemetry"
)

const maxPayloadBytes = 256 << 10

// Invoker runs a named server-side function.
type Invoker interface {
	InvokeFunction(ctx context.Context, name string, payload any) (json.RawMessage, error)
}

// Handler exposes direct function invocation.
type Handler struct {
	Gateway Invoker
}

func NewHandler(gw Invoker) *Handler {
	return &Handler{Gateway: gw}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/functions/:name", h.invoke)
}

func (h *Handler) invoke(c *gin.Context) {
	name := c.Param("name")
	c.Set(middleware.FunctionKey, name)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes)
	var payload json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	out, err := h.Gateway.InvokeFunction(c.Request.Context(), name, payload)
	if err != nil {
		status, code := classify(err)
		if status >= http.StatusInternalServerError {
			telemetry.Error("functions.invoke_failed", map[string]any{"function": name, "error": err})
		}
		respond.Error(c, status, code, gateway.Message(err, "function call failed"), gin.H{"function": name})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

func classify(err error) (int, string) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, gateway.ErrUnknownFunction):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, assistant.ErrMessageTooShort),
		errors.Is(err, scoring.ErrEmptyResume),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, context.Canceled):
		return 499, "canceled"
	default:
		return http.StatusBadGateway, "function_failed"
	}
}
