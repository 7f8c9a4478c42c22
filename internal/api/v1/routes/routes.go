package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"s2t/internal/api/v1/handlers"
	"s2t/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	FileService     services.FileService
	LiveService     services.LiveService
	ProviderService services.ProviderService
	UploadLimits    handlers.UploadLimits
	Logger          *zap.Logger
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	if container.FileService != nil {
		transcriptionHandler := handlers.NewTranscriptionHandler(container.FileService, container.UploadLimits, container.Logger)
		transcriptions := router.Group("/transcriptions")
		{
			transcriptions.POST("/file", transcriptionHandler.Upload)
		}
	}

	// live capture needs a microphone; headless servers run without it
	if container.LiveService != nil {
		liveHandler := handlers.NewLiveHandler(container.LiveService, container.Logger)
		router.GET("/live", liveHandler.Serve)
	}

	if container.ProviderService != nil {
		providerHandler := handlers.NewProviderHandler(container.ProviderService)
		providers := router.Group("/providers")
		{
			providers.GET("", providerHandler.List)
			providers.GET("/:name", providerHandler.Get)
		}
	}
}
