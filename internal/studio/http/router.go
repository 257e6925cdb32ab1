package http

import "github.com/gin-gonic/gin"

// Register registers the session and project routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	s := rg.Group("/session")
	s.GET("", h.GetSession)
	s.GET("/stream", h.StreamSession)
	s.PUT("/text", h.EditText)
	s.POST("/render", h.Render)
	s.POST("/undo", h.Undo)
	s.POST("/redo", h.Redo)
	s.POST("/history/:index/restore", h.RestoreVersion)
	s.POST("/shortcut", h.Shortcut)
	s.PUT("/live", h.SetLiveMode)
	s.PUT("/zoom", h.Zoom)
	s.GET("/export/svg", h.ExportSVG)
	s.GET("/export/png", h.ExportPNG)

	p := rg.Group("/projects")
	p.GET("", h.ListProjects)
	p.POST("", h.CreateProject)
	p.POST("/:id/select", h.SelectProject)
	p.PATCH("/:id", h.RenameProject)
	p.DELETE("/:id", h.DeleteProject)
	p.GET("/:id/versions", h.ListVersions)
	p.POST("/:id/versions", h.SaveVersion)
}
