package diagrams

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"resumepro/internal/gateway"
	"resumepro/internal/records"
	"resumepro/internal/shared/server/middleware"
	"resumepro/internal/shared/server/respond"
)

const defaultListLimit = 50

// Handler exposes the diagram editor and saved diagrams.
type Handler struct {
	Svc      *Service
	upgrader websocket.Upgrader
}

// NewHandler constructs a Handler. allowOrigin decides websocket handshakes;
// nil accepts same-host requests only.
func NewHandler(svc *Service, allowOrigin func(origin string) bool) *Handler {
	h := &Handler{Svc: svc}
	if allowOrigin != nil {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			return allowOrigin(r.Header.Get("Origin"))
		}
	}
	return h
}

// RegisterRoutes attaches the stateless editor and the live session, open to guests.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/diagrams/apply", h.apply)
	rg.GET("/diagrams/ws", h.live)
}

// RegisterSavedRoutes attaches persistence routes; callers gate them behind a login.
func (h *Handler) RegisterSavedRoutes(rg *gin.RouterGroup) {
	rg.POST("/diagrams", h.save)
	rg.GET("/diagrams", h.list)
	rg.GET("/diagrams/:id", h.get)
	rg.DELETE("/diagrams/:id", h.delete)
	rg.POST("/diagrams/export", h.export)
}

type applyRequest struct {
	State State `json:"state"`
	Ops   []Op  `json:"ops"`
}

func (h *Handler) apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	editor, err := Load(req.State)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_diagram", err.Error(), nil)
		return
	}
	if err := editor.ApplyAll(req.Ops); err != nil {
		var opErr *OpError
		details := gin.H{"state": editor.State()}
		if errors.As(err, &opErr) {
			details["index"] = opErr.Index
		}
		respond.Error(c, http.StatusUnprocessableEntity, "invalid_op", err.Error(), details)
		return
	}
	respond.OK(c, gin.H{"state": editor.State()})
}

func (h *Handler) save(c *gin.Context) {
	var d Diagram
	if err := c.ShouldBindJSON(&d); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	saved, err := h.Svc.Save(c.Request.Context(), middleware.UserIDFromContext(c), d)
	if err != nil {
		writeError(c, err, "failed to save diagram")
		return
	}
	c.Set(middleware.RecordIDKey, saved.ID)
	respond.Created(c, saved)
}

func (h *Handler) export(c *gin.Context) {
	var d Diagram
	if err := c.ShouldBindJSON(&d); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	data, saved, err := h.Svc.Export(c.Request.Context(), middleware.UserIDFromContext(c), d)
	if err != nil {
		writeError(c, err, "failed to export diagram")
		return
	}
	if saved.ID != "" {
		c.Set(middleware.RecordIDKey, saved.ID)
		c.Header("X-Record-Id", saved.ID)
	}
	respond.Attachment(c, ExportFileName, "application/json", data)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c),
		queryInt(c, "limit", defaultListLimit), queryInt(c, "offset", 0))
	if err != nil {
		writeError(c, err, "failed to load diagrams")
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	saved, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load diagram")
		return
	}
	respond.OK(c, saved)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete diagram")
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidDiagram):
		respond.Error(c, http.StatusBadRequest, "invalid_diagram", err.Error(), nil)
	case errors.Is(err, records.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "diagram not found", nil)
	default:
		respond.Error(c, http.StatusBadGateway, "gateway_error", gateway.Message(err, fallback), nil)
	}
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
