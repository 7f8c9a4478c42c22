package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"s2t/internal/api/middleware"
	"s2t/internal/api/v1/dto"
	"s2t/internal/api/v1/services"
)

// ProviderHandler handles provider-related API endpoints
type ProviderHandler struct {
	service services.ProviderService
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(service services.ProviderService) *ProviderHandler {
	return &ProviderHandler{
		service: service,
	}
}

// List handles GET /api/v1/providers
// Lists the configured recognition backends; ?health=true also checks them.
func (h *ProviderHandler) List(c *gin.Context) {
	var query dto.ProvidersQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	providers, err := h.service.ListProviders(c.Request.Context(), query.Health)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, providers)
}

// Get handles GET /api/v1/providers/:name
func (h *ProviderHandler) Get(c *gin.Context) {
	var query dto.ProvidersQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	provider, err := h.service.GetProvider(c.Request.Context(), c.Param("name"), query.Health)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, provider)
}
