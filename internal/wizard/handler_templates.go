package wizard

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resumepro/internal/shared/server/respond"
	"resumepro/resume/model"
	"resumepro/resume/render"
	"resumepro/resume/templates"
)

func (h *Handler) listTemplates(c *gin.Context) {
	var f templates.Filter
	if raw := c.Query("layout"); raw != "" {
		l, ok := templates.ParseLayout(raw)
		if !ok {
			respond.Error(c, http.StatusBadRequest, "validation_error", "layout must be 1-column or 2-column", nil)
			return
		}
		f.Layout = l
	}
	if raw := c.Query("style"); raw != "" {
		s, ok := templates.ParseStyle(raw)
		if !ok {
			respond.Error(c, http.StatusBadRequest, "validation_error", "style must be modern, classic or creative", nil)
			return
		}
		f.Style = s
	}
	if raw := c.Query("photo"); raw != "" {
		p, ok := templates.ParsePhoto(raw)
		if !ok {
			respond.Error(c, http.StatusBadRequest, "validation_error", "photo must be with or without", nil)
			return
		}
		f.Photo = p
	}
	if raw := c.Query("recommended"); raw != "" {
		rec, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "recommended must be a boolean", nil)
			return
		}
		f.Recommended = &rec
	}
	respond.OK(c, gin.H{"items": h.Manager.Catalog().Find(f)})
}

func (h *Handler) getTemplate(c *gin.Context) {
	tpl, err := h.Manager.Catalog().Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load template", nil)
		return
	}
	respond.OK(c, tpl)
}

type previewRequest struct {
	Document   model.Document `json:"document"`
	TemplateID string         `json:"templateId"`
}

// renderPreview renders an arbitrary document without touching any session.
// ?format=layout returns the layout JSON instead of HTML.
func (h *Handler) renderPreview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	var tpl *templates.Descriptor
	if id := strings.TrimSpace(req.TemplateID); id != "" {
		found, err := h.Manager.Catalog().Get(id)
		if err != nil {
			respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
			return
		}
		tpl = &found
	}
	layout := render.BuildLayout(req.Document, tpl)
	if c.Query("format") == "layout" {
		respond.OK(c, layout)
		return
	}
	writeHTML(c, layout)
}
