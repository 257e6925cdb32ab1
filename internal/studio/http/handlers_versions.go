package http

import (
	"net/http"
	"strconv"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/versions"
	"github.com/gin-gonic/gin"
)

// ListVersions lists archived versions of a project, newest first
func (h *Handler) ListVersions(c *gin.Context) {
	if h.versions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "version archive not configured"})
		return
	}
	if _, ok := h.findProject(c.Param("id")); !ok {
		writeError(c, "versions.list", domain.ErrNotFound)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.versions.List(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		writeError(c, "versions.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "versions": list})
}

// SaveVersion archives the project's current text
func (h *Handler) SaveVersion(c *gin.Context) {
	if h.versions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "version archive not configured"})
		return
	}
	p, ok := h.findProject(c.Param("id"))
	if !ok {
		writeError(c, "versions.save", domain.ErrNotFound)
		return
	}

	v, err := h.versions.Save(c.Request.Context(), versions.SaveInput{
		ProjectID:  p.ID,
		Name:       p.Name,
		SourceText: p.SourceText,
		Reason:     versions.ReasonManual,
	})
	if err != nil {
		writeError(c, "versions.save", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "version": v})
}

func (h *Handler) findProject(id string) (domain.Project, bool) {
	for _, p := range h.session.Projects() {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Project{}, false
}
