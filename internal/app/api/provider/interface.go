package provider

import (
	"context"

	"s2t/internal/app/audio"
)

// Recognizer converts a buffered audio clip into text.
// Implementations return apperrors.ErrUnrecognized when the audio was
// received but yielded no usable transcript, and any other error for
// transport or service failures.
type Recognizer interface {
	// Recognize transcribes the whole clip
	Recognize(ctx context.Context, clip *audio.Clip) (string, error)

	// Provider metadata and capabilities
	GetProviderInfo() ProviderInfo

	// Configuration validation and health checks
	ValidateConfiguration() error

	// HealthCheck verifies the backend is reachable
	HealthCheck(ctx context.Context) error
}

// ProviderRegistry manages named recognizer instances
type ProviderRegistry interface {
	// Register a recognizer
	RegisterProvider(name string, recognizer Recognizer) error

	// Get a recognizer by name
	GetProvider(name string) (Recognizer, error)

	// List all registered recognizers
	ListProviders() []string

	// Get default recognizer
	GetDefaultProvider() (Recognizer, error)

	// Set default recognizer
	SetDefaultProvider(name string) error

	// Name of the default recognizer, empty when none is registered
	DefaultName() string

	// Health check all recognizers
	HealthCheckAll(ctx context.Context) map[string]error
}
