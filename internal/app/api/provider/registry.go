package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	apperrors "s2t/internal/app/errors"
)

// DefaultProviderRegistry implements ProviderRegistry interface
type DefaultProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]Recognizer
	default_  string
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *DefaultProviderRegistry {
	return &DefaultProviderRegistry{
		providers: make(map[string]Recognizer),
	}
}

// RegisterProvider registers a new recognizer
func (r *DefaultProviderRegistry) RegisterProvider(name string, recognizer Recognizer) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if recognizer == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider '%s' already registered", name)
	}

	if err := recognizer.ValidateConfiguration(); err != nil {
		return fmt.Errorf("provider validation failed: %w", err)
	}

	r.providers[name] = recognizer

	// Set as default if it's the first provider
	if r.default_ == "" {
		r.default_ = name
	}

	return nil
}

// GetProvider retrieves a recognizer by name
func (r *DefaultProviderRegistry) GetProvider(name string) (Recognizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recognizer, exists := r.providers[name]
	if !exists {
		return nil, apperrors.Wrapf(apperrors.ErrProviderNotFound, "provider '%s' not found", name)
	}

	return recognizer, nil
}

// ListProviders returns the registered names in sorted order
func (r *DefaultProviderRegistry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.providers)
	sort.Strings(names)
	return names
}

// Infos returns provider metadata for every registered recognizer, sorted by name
func (r *DefaultProviderRegistry) Infos() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := lo.MapToSlice(r.providers, func(_ string, rec Recognizer) ProviderInfo {
		return rec.GetProviderInfo()
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// DefaultName returns the default provider name, empty when nothing is registered
func (r *DefaultProviderRegistry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.default_
}

// GetDefaultProvider returns the default recognizer
func (r *DefaultProviderRegistry) GetDefaultProvider() (Recognizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.default_ == "" {
		return nil, apperrors.Wrap(apperrors.ErrProviderNotFound, "no default provider set")
	}

	recognizer, exists := r.providers[r.default_]
	if !exists {
		return nil, apperrors.Wrapf(apperrors.ErrProviderNotFound, "default provider '%s' not found", r.default_)
	}

	return recognizer, nil
}

// SetDefaultProvider sets the default recognizer
func (r *DefaultProviderRegistry) SetDefaultProvider(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return apperrors.Wrapf(apperrors.ErrProviderNotFound, "provider '%s' not found", name)
	}

	r.default_ = name
	return nil
}

// HealthCheckAll performs health checks on all registered recognizers
func (r *DefaultProviderRegistry) HealthCheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	providers := make(map[string]Recognizer, len(r.providers))
	for name, recognizer := range r.providers {
		providers[name] = recognizer
	}
	r.mu.RUnlock()

	results := make(map[string]error)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, recognizer := range providers {
		wg.Add(1)
		go func(name string, recognizer Recognizer) {
			defer wg.Done()

			err := recognizer.HealthCheck(ctx)

			mu.Lock()
			results[name] = err
			mu.Unlock()
		}(name, recognizer)
	}

	wg.Wait()
	return results
}
