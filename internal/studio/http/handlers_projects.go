package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProjects lists every project
func (h *Handler) ListProjects(c *gin.Context) {
	state := h.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": state.Projects, "active_id": state.Active.ID})
}

// CreateProject creates an empty project and makes it active
func (h *Handler) CreateProject(c *gin.Context) {
	var body projectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}

	p, err := h.session.CreateProject(c.Request.Context(), body.Name)
	if err != nil {
		writeError(c, "projects.create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

// SelectProject switches the active project
func (h *Handler) SelectProject(c *gin.Context) {
	p, err := h.session.SelectProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "projects.select", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

// RenameProject renames a project
func (h *Handler) RenameProject(c *gin.Context) {
	var body projectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	p, err := h.session.RenameProject(c.Request.Context(), c.Param("id"), body.Name)
	if err != nil {
		writeError(c, "projects.rename", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

// DeleteProject removes a project and reports the active one afterwards
func (h *Handler) DeleteProject(c *gin.Context) {
	active, err := h.session.DeleteProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "projects.delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "active": active})
}
