package dto

import (
	"github.com/samber/lo"
	"s2t/internal/app/api/provider"
)

// Health states reported by the providers endpoint
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)

// ProvidersQuery selects optional work for the providers listing
type ProvidersQuery struct {
	// Health runs a health check against every backend
	Health bool `form:"health"`
}

// ProviderResponse represents a recognition backend in API responses
type ProviderResponse struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"display_name"`
	Type             string   `json:"type"`
	Version          string   `json:"version,omitempty"`
	SupportedFormats []string `json:"supported_formats"`
	MaxFileSizeMB    int      `json:"max_file_size_mb,omitempty"`
	RequiresInternet bool     `json:"requires_internet"`
	RequiresAPIKey   bool     `json:"requires_api_key"`
	DefaultModel     string   `json:"default_model,omitempty"`
	IsDefault        bool     `json:"is_default"`
	HealthStatus     string   `json:"health_status,omitempty"`
	HealthError      string   `json:"health_error,omitempty"`
}

// ProviderListResponse is the body of GET /providers
type ProviderListResponse struct {
	Default   string             `json:"default"`
	Providers []ProviderResponse `json:"providers"`
}

// ToProviderResponse converts provider info to response DTO
func ToProviderResponse(name string, info provider.ProviderInfo, isDefault bool) ProviderResponse {
	return ProviderResponse{
		Name:        name,
		DisplayName: info.DisplayName,
		Type:        string(info.Type),
		Version:     info.Version,
		SupportedFormats: lo.Map(info.SupportedFormats, func(f provider.AudioFormat, _ int) string {
			return string(f)
		}),
		MaxFileSizeMB:    info.MaxFileSizeMB,
		RequiresInternet: info.RequiresInternet,
		RequiresAPIKey:   info.RequiresAPIKey,
		DefaultModel:     info.DefaultModel,
		IsDefault:        isDefault,
	}
}

// WithHealth records the outcome of a health check
func (r ProviderResponse) WithHealth(err error) ProviderResponse {
	if err != nil {
		r.HealthStatus = HealthUnhealthy
		r.HealthError = err.Error()
		return r
	}
	r.HealthStatus = HealthHealthy
	return r
}
