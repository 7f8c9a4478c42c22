package provider

import (
	"fmt"
	"time"
)

// AudioFormat defines supported audio formats
type AudioFormat string

const (
	FormatWAV AudioFormat = "wav"
)

// ProviderType defines where a recognition backend runs
type ProviderType string

const (
	ProviderTypeLocal  ProviderType = "local"
	ProviderTypeRemote ProviderType = "remote"
)

// ProviderInfo contains metadata about a recognition backend
type ProviderInfo struct {
	// Basic info
	Name        string       `json:"name"`         // Provider name (e.g., "openai", "whisper_server")
	DisplayName string       `json:"display_name"` // Human-readable name
	Type        ProviderType `json:"type"`         // local, remote
	Version     string       `json:"version,omitempty"`

	// Capabilities
	SupportedFormats []AudioFormat `json:"supported_formats"`
	MaxFileSizeMB    int           `json:"max_file_size_mb,omitempty"` // 0 means no limit

	// Requirements
	RequiresInternet bool `json:"requires_internet"`
	RequiresAPIKey   bool `json:"requires_api_key"`

	// Configuration
	DefaultModel string `json:"default_model,omitempty"`
}

// Settings is the free-form configuration block of one backend
type Settings map[string]interface{}

// String returns a string setting or the fallback when absent or empty
func (s Settings) String(key, fallback string) string {
	if v, ok := s[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Duration accepts Go duration strings ("30s") or a number of seconds
func (s Settings) Duration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("setting %s: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("setting %s has unsupported type %T", key, v)
	}
}
