package api

import (
	"github.com/gin-gonic/gin"

	"github.com/aplika/jobboard/internal/api/handler"
	"github.com/aplika/jobboard/internal/api/middleware"
	"github.com/aplika/jobboard/internal/config"
	"github.com/aplika/jobboard/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	jobService *service.JobService,
	facetService *service.FacetService,
	syncService *service.SyncService,
	cfg *config.ServerConfig,
) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler()
	jobHandler := handler.NewJobHandler(jobService)
	facetHandler := handler.NewFacetHandler(facetService)
	syncHandler := handler.NewSyncHandler(syncService)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/jobs", jobHandler.ListJobs)
		v1.GET("/jobs/:id", jobHandler.GetJob)

		v1.GET("/locations", facetHandler.ListLocations)
		v1.GET("/locations/fields", facetHandler.ListLocationField)

		v1.POST("/sync", syncHandler.TriggerSync)
	}

	return r
}
