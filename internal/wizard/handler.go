package wizard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumepro/internal/gateway"
	"resumepro/internal/shared/server/middleware"
	"resumepro/internal/shared/server/respond"
	"resumepro/resume/render"
	"resumepro/resume/templates"
)

const maxStepBody = 1 << 20

// Handler exposes the wizard over HTTP.
type Handler struct {
	Manager *Manager
}

// NewHandler constructs a Handler.
func NewHandler(m *Manager) *Handler {
	return &Handler{Manager: m}
}

// RegisterRoutes attaches session routes to a protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/templates/select", h.selectTemplate)
	rg.GET("/wizard", h.state)
	rg.PUT("/wizard/steps/:step", h.updateStep)
	rg.POST("/wizard/advance", h.advance)
	rg.POST("/wizard/retreat", h.retreat)
	rg.POST("/wizard/draft", h.saveDraft)
	rg.DELETE("/wizard", h.discard)
	rg.GET("/wizard/preview", h.preview)
	rg.GET("/wizard/layout", h.layout)
}

// RegisterSavedRoutes attaches routes that spend credits and write to the
// saved library. Callers gate them behind a login.
func (h *Handler) RegisterSavedRoutes(rg *gin.RouterGroup) {
	rg.POST("/wizard/finalize", h.finalize)
}

// RegisterPublicRoutes attaches catalog and stateless preview routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.listTemplates)
	rg.GET("/templates/:id", h.getTemplate)
	rg.POST("/preview", h.renderPreview)
}

func (h *Handler) session(c *gin.Context) *Session {
	return h.Manager.GetOrCreate(c.Request.Context(), middleware.UserIDFromContext(c))
}

type selectTemplateRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
}

func (h *Handler) selectTemplate(c *gin.Context) {
	var req selectTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "templateId is required", nil)
		return
	}
	tpl, err := h.Manager.SelectTemplate(c.Request.Context(), middleware.UserIDFromContext(c), strings.TrimSpace(req.TemplateID))
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save template choice", nil)
		return
	}
	respond.OK(c, tpl)
}

func (h *Handler) state(c *gin.Context) {
	respond.OK(c, h.session(c).State())
}

type stepResponse struct {
	State
	Issues []Issue `json:"issues"`
}

func (h *Handler) updateStep(c *gin.Context) {
	step, ok := ParseStep(c.Param("step"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "unknown_step", "unknown wizard step", gin.H{"steps": Order})
		return
	}
	c.Set(middleware.WizardStepKey, string(step))
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxStepBody))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read body", nil)
		return
	}
	state, issues, err := h.session(c).UpdateStep(step, json.RawMessage(body))
	if err != nil {
		if errors.Is(err, ErrInvalidStepBody) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update step", nil)
		return
	}
	respond.OK(c, stepResponse{State: state, Issues: issues})
}

func (h *Handler) advance(c *gin.Context) {
	state, err := h.session(c).Advance()
	if err != nil {
		respond.Error(c, http.StatusConflict, "at_last_step", err.Error(), state)
		return
	}
	c.Set(middleware.WizardStepKey, string(state.Step))
	respond.OK(c, state)
}

func (h *Handler) retreat(c *gin.Context) {
	state, err := h.session(c).Retreat()
	if err != nil {
		respond.Error(c, http.StatusConflict, "at_first_step", err.Error(), state)
		return
	}
	c.Set(middleware.WizardStepKey, string(state.Step))
	respond.OK(c, state)
}

func (h *Handler) saveDraft(c *gin.Context) {
	state, err := h.session(c).PersistDraft(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "draft_save_failed", "failed to save draft", nil)
		return
	}
	respond.OK(c, state)
}

func (h *Handler) discard(c *gin.Context) {
	if err := h.Manager.Discard(c.Request.Context(), middleware.UserIDFromContext(c)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to discard draft", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) preview(c *gin.Context) {
	writeHTML(c, h.session(c).Layout())
}

func (h *Handler) layout(c *gin.Context) {
	respond.OK(c, h.session(c).Layout())
}

func (h *Handler) finalize(c *gin.Context) {
	art, err := h.session(c).Finalize(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientCredits):
			respond.Error(c, http.StatusPaymentRequired, "insufficient_credits", "You need at least one credit to download your resume", nil)
		case errors.Is(err, ErrSessionClosed):
			respond.Error(c, http.StatusConflict, "session_closed", err.Error(), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "finalize_failed", gateway.Message(err, "failed to finalize resume"), nil)
		}
		return
	}
	c.Set(middleware.RecordIDKey, art.RecordID)
	c.Header("X-Record-Id", art.RecordID)
	respond.Attachment(c, art.FileName, "application/json", art.Data)
}

func writeHTML(c *gin.Context, layout render.Layout) {
	html, err := render.RenderHTML(layout)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "render_failed", "failed to render preview", nil)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}
