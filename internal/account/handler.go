package account

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resumepro/internal/shared/server/middleware"
	"resumepro/internal/shared/server/respond"
	"resumepro/internal/shared/telemetry"
)

// Handler moves work done under a guest id into the caller's account.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the claim route. It needs a signed-in caller.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/account/claim-guest", h.claimGuest)
}

type claimRequest struct {
	GuestID string `json:"guestId"`
}

// claimResponse echoes the claimed guest id so the client can forget it.
type claimResponse struct {
	ClaimResult
	GuestID string `json:"guestId"`
}

func (h *Handler) claimGuest(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" || middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Sign in before claiming guest work", nil)
		return
	}

	guestID, ok := requestedGuest(c)
	if !ok {
		return
	}

	result, err := h.Svc.ClaimGuest(c.Request.Context(), middleware.GuestPrefix+guestID, userID)
	if err != nil {
		telemetry.Error("account.claim_failed", map[string]any{"user_id": userID, "error": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Could not move your guest work, try again", nil)
		return
	}
	respond.OK(c, claimResponse{ClaimResult: result, GuestID: guestID})
}

// requestedGuest reads the guest id from X-Guest-Id or, after a Google
// sign-in redirect, from a {"guestId"} body. It writes the error response
// itself when the id is missing or not a UUID.
func requestedGuest(c *gin.Context) (string, bool) {
	guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
	if guestID == "" && c.Request.ContentLength != 0 {
		var body claimRequest
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Request body must be JSON", nil)
			return "", false
		}
		guestID = strings.TrimSpace(body.GuestID)
	}

	issue := ""
	switch {
	case guestID == "":
		issue = "required"
	default:
		if _, err := uuid.Parse(guestID); err != nil {
			issue = "must be a UUID"
		}
	}
	if issue != "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "A guest id is needed to claim guest work",
			[]map[string]string{{"field": "guestId", "issue": issue}})
		return "", false
	}
	return guestID, true
}
