package credits

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumepro/internal/shared/server/middleware"
	"resumepro/internal/shared/server/respond"
)

// Ledger is the credit surface the handler needs.
type Ledger interface {
	CreditBalance(ctx context.Context, userID string) (Balance, error)
	ResetCredits(ctx context.Context, userID string) (Balance, error)
}

// Handler exposes credit endpoints.
type Handler struct {
	Ledger Ledger
}

// NewHandler constructs a Handler.
func NewHandler(ledger Ledger) *Handler {
	return &Handler{Ledger: ledger}
}

// RegisterRoutes attaches credit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/credits", h.getCredits)
}

// RegisterDevRoutes attaches dev-only credit routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/credits/reset", h.resetCredits)
}

func (h *Handler) getCredits(c *gin.Context) {
	b, err := h.Ledger.CreditBalance(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to fetch credits")
		return
	}
	respond.OK(c, b)
}

func (h *Handler) resetCredits(c *gin.Context) {
	b, err := h.Ledger.ResetCredits(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to reset credits")
		return
	}
	respond.OK(c, b)
}

func writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}
