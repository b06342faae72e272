package assistant

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resumepro/internal/gateway"
	"resumepro/internal/shared/server/middleware"
	"resumepro/internal/shared/server/respond"
)

const defaultHistoryLimit = 50

// Handler exposes chat endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the chat endpoint, open to guests.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.send)
}

// RegisterSavedRoutes attaches history endpoints; callers gate them behind a login.
func (h *Handler) RegisterSavedRoutes(rg *gin.RouterGroup) {
	rg.GET("/chat/history", h.history)
	rg.DELETE("/chat/history", h.clear)
}

func (h *Handler) send(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	ex, err := h.Svc.Send(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMessageTooShort):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrUnavailable):
			respond.Error(c, http.StatusBadGateway, "assistant_unavailable", ErrUnavailable.Error(), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "assistant_unavailable", gateway.Message(err, "failed to reach assistant"), nil)
		}
		return
	}
	respond.OK(c, ex)
}

func (h *Handler) history(c *gin.Context) {
	limit := queryInt(c, "limit", defaultHistoryLimit)
	offset := queryInt(c, "offset", 0)
	items, err := h.Svc.History(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", gateway.Message(err, "failed to load chat history"), nil)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) clear(c *gin.Context) {
	n, err := h.Svc.Clear(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", gateway.Message(err, "failed to clear chat history"), nil)
		return
	}
	respond.OK(c, gin.H{"deleted": n})
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
