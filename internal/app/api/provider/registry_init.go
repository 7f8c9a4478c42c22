package provider

import (
	"fmt"
	"sort"
	"sync"

	apperrors "s2t/internal/app/errors"
)

// ProviderCreator is a function that creates a recognizer from configuration
type ProviderCreator func(settings Settings) (Recognizer, error)

// providerRegistry stores recognizer creation functions
var (
	providerRegistry = make(map[string]ProviderCreator)
	registryMutex    sync.RWMutex
)

// RegisterProvider registers a recognizer creator function.
// Backends call it from init.
func RegisterProvider(providerType string, creator ProviderCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerRegistry[providerType] = creator
}

// GetProviderCreator returns the creator function for a provider type
func GetProviderCreator(providerType string) (ProviderCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := providerRegistry[providerType]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrProviderNotFound, "provider type %s not registered", providerType)
	}
	return creator, nil
}

// ListRegisteredProviders returns all registered provider types in sorted order
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, providerType)
	}
	sort.Strings(providers)
	return providers
}

// NewFromConfig creates and validates a recognizer of the given type
func NewFromConfig(providerType string, settings Settings) (Recognizer, error) {
	creator, err := GetProviderCreator(providerType)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = Settings{}
	}

	recognizer, err := creator(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", providerType, err)
	}
	if err := recognizer.ValidateConfiguration(); err != nil {
		return nil, fmt.Errorf("%s provider configuration invalid: %w", providerType, err)
	}
	return recognizer, nil
}
