package http

import (
	"errors"
	"net/http"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/logging"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, domain.ErrOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "history index out of range"})
	case errors.Is(err, domain.ErrExportPrecondition):
		c.JSON(http.StatusPreconditionFailed, gin.H{"ok": false, "error": "Render diagram first"})
	default:
		logging.NewLogger(c.Request.Context()).LogError(operation, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
