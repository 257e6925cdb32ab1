package bootstrap

import (
	"time"

	httpapi "github.com/GoSim-25-26J-441/diagram-studio/internal/api/http"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/export"
	studiohttp "github.com/GoSim-25-26J-441/diagram-studio/internal/studio/http"
	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	Store       string
	Checks      map[string]httpapi.Pinger
	Session     *service.Session
	Versions    studiohttp.VersionStore
	Archiver    *export.Archiver
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id", "Content-Disposition", "X-Export-Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store, dep.Checks)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	opts := []studiohttp.Option{studiohttp.WithArchiver(dep.Archiver)}
	if dep.Versions != nil {
		opts = append(opts, studiohttp.WithVersions(dep.Versions))
	}
	studiohttp.New(dep.Session, opts...).Register(api)

	return r
}
