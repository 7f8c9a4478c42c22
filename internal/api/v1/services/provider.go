package services

import (
	"context"
	"time"

	"s2t/internal/api/v1/dto"
	"s2t/internal/app/api/provider"
)

// defaultHealthTimeout bounds health checks triggered by API requests
const defaultHealthTimeout = 5 * time.Second

// ProviderServiceImpl implements ProviderService
type ProviderServiceImpl struct {
	registry      provider.ProviderRegistry
	healthTimeout time.Duration
}

// NewProviderService creates a new provider service
func NewProviderService(registry provider.ProviderRegistry) *ProviderServiceImpl {
	return &ProviderServiceImpl{
		registry:      registry,
		healthTimeout: defaultHealthTimeout,
	}
}

// ListProviders lists the configured backends, optionally checking their health
func (s *ProviderServiceImpl) ListProviders(ctx context.Context, withHealth bool) (*dto.ProviderListResponse, error) {
	defaultName := s.registry.DefaultName()

	var health map[string]error
	if withHealth {
		hctx, cancel := context.WithTimeout(ctx, s.healthTimeout)
		health = s.registry.HealthCheckAll(hctx)
		cancel()
	}

	names := s.registry.ListProviders()
	responses := make([]dto.ProviderResponse, 0, len(names))
	for _, name := range names {
		recognizer, err := s.registry.GetProvider(name)
		if err != nil {
			// removed between listing and lookup
			continue
		}

		resp := dto.ToProviderResponse(name, recognizer.GetProviderInfo(), name == defaultName)
		if withHealth {
			resp = resp.WithHealth(health[name])
		}
		responses = append(responses, resp)
	}

	return &dto.ProviderListResponse{
		Default:   defaultName,
		Providers: responses,
	}, nil
}

// GetProvider describes one backend by its registered name
func (s *ProviderServiceImpl) GetProvider(ctx context.Context, name string, withHealth bool) (*dto.ProviderResponse, error) {
	recognizer, err := s.registry.GetProvider(name)
	if err != nil {
		return nil, err
	}

	resp := dto.ToProviderResponse(name, recognizer.GetProviderInfo(), name == s.registry.DefaultName())
	if withHealth {
		hctx, cancel := context.WithTimeout(ctx, s.healthTimeout)
		defer cancel()
		resp = resp.WithHealth(recognizer.HealthCheck(hctx))
	}
	return &resp, nil
}
