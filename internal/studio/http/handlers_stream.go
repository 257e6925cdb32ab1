package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StreamSession streams session changes using Server-Sent Events (SSE)
func (h *Handler) StreamSession(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	changes, cancel := h.session.Subscribe()
	defer cancel()

	initialData, _ := json.Marshal(gin.H{"session": h.session.Snapshot()})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", string(initialData))
	flusher.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case change, ok := <-changes:
			if !ok {
				return
			}
			eventData, _ := json.Marshal(gin.H{
				"reason":  change.Reason,
				"at":      change.At,
				"session": h.session.Snapshot(),
			})
			fmt.Fprintf(c.Writer, "event: update\ndata: %s\n\n", string(eventData))
			flusher.Flush()
		}
	}
}
