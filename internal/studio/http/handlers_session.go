package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/service"
	"github.com/gin-gonic/gin"
)

// GetSession returns the full session snapshot
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": h.session.Snapshot()})
}

// EditText replaces the active project's source text
func (h *Handler) EditText(c *gin.Context) {
	var body editRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if err := h.session.Edit(c.Request.Context(), *body.Text); err != nil {
		writeError(c, "session.edit", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": h.session.Snapshot()})
}

// Render issues an explicit render of the active project
func (h *Handler) Render(c *gin.Context) {
	ticket := h.session.Render(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{"ok": true, "render": ticket})
}

// Undo steps back one history entry
func (h *Handler) Undo(c *gin.Context) {
	h.step(c, "session.undo", h.session.Undo(c.Request.Context()))
}

// Redo steps forward one history entry
func (h *Handler) Redo(c *gin.Context) {
	h.step(c, "session.redo", h.session.Redo(c.Request.Context()))
}

// RestoreVersion jumps to a history entry
func (h *Handler) RestoreVersion(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "history index must be an integer")
		return
	}
	h.step(c, "session.restore", h.session.RestoreVersion(c.Request.Context(), index))
}

func (h *Handler) step(c *gin.Context, operation string, err error) {
	if errors.Is(err, domain.ErrNoOp) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "changed": false})
		return
	}
	if err != nil {
		writeError(c, operation, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "changed": true, "session": h.session.Snapshot()})
}

// Shortcut runs the action bound to a key chord
func (h *Handler) Shortcut(c *gin.Context) {
	var body shortcutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	handled, err := h.session.HandleShortcut(c.Request.Context(), body.Keys)
	if err != nil {
		writeError(c, "session.shortcut", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "handled": handled, "action": service.ResolveShortcut(body.Keys)})
}

// SetLiveMode toggles render-on-edit
func (h *Handler) SetLiveMode(c *gin.Context) {
	var body liveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	h.session.SetLiveMode(*body.Enabled)
	c.JSON(http.StatusOK, gin.H{"ok": true, "live_mode": *body.Enabled})
}

// Zoom adjusts the view transform
func (h *Handler) Zoom(c *gin.Context) {
	var body zoomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	var zoom float64
	switch {
	case body.Zoom != nil:
		zoom = h.session.SetZoom(*body.Zoom)
	case body.Action == "in":
		zoom = h.session.ZoomIn()
	case body.Action == "out":
		zoom = h.session.ZoomOut()
	case body.Action == "reset":
		zoom = h.session.ResetZoom()
	default:
		badRequest(c, "action must be in, out or reset")
		return
	}
	view := h.session.Snapshot().View
	c.JSON(http.StatusOK, gin.H{"ok": true, "zoom": zoom, "transform": view.Transform})
}

// ExportSVG downloads the last successful render
func (h *Handler) ExportSVG(c *gin.Context) {
	exp, err := h.session.ExportVector()
	if err != nil {
		writeError(c, "session.export_svg", err)
		return
	}
	h.sendExport(c, exp)
}

// ExportPNG downloads the last successful render as a raster image
func (h *Handler) ExportPNG(c *gin.Context) {
	exp, err := h.session.ExportRaster(c.Request.Context())
	if err != nil {
		writeError(c, "session.export_png", err)
		return
	}
	h.sendExport(c, exp)
}

func (h *Handler) sendExport(c *gin.Context, exp service.Export) {
	if h.archiver != nil {
		if loc, err := h.archiver.Archive(c.Request.Context(), exp.ProjectID, exp.Filename, exp.ContentType, exp.Data); err == nil && loc != "" {
			c.Header("X-Export-Location", loc)
		}
	}
	c.Header("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	c.Data(http.StatusOK, exp.ContentType, exp.Data)
}
