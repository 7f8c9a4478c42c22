// Package whisper recognizes speech with the OpenAI audio transcription API.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"s2t/internal/app/api/provider"
	"s2t/internal/app/audio"
	apperrors "s2t/internal/app/errors"
	"s2t/internal/config"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com/v1"
)

// Config represents configuration specific to the OpenAI Whisper backend
type Config struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Language    string        `yaml:"language"`
	Prompt      string        `yaml:"prompt"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RemoteRecognizer implements remote recognition using the OpenAI API.
type RemoteRecognizer struct {
	client *openai.Client
	config Config
}

// NewRemoteRecognizer creates a new RemoteRecognizer instance.
func NewRemoteRecognizer(cfg Config) *RemoteRecognizer {
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &RemoteRecognizer{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

// NewRemoteRecognizerFromSettings creates a recognizer from generic settings
func NewRemoteRecognizerFromSettings(settings provider.Settings) (*RemoteRecognizer, error) {
	timeout, err := settings.Duration("timeout", 0)
	if err != nil {
		return nil, err
	}

	cfg := Config{
		APIKey:   settings.String("api_key", ""),
		BaseURL:  settings.String("base_url", ""),
		Model:    settings.String("model", ""),
		Language: settings.String("language", ""),
		Prompt:   settings.String("prompt", ""),
		Timeout:  timeout,
	}
	if temperature, ok := settings["temperature"].(float64); ok {
		cfg.Temperature = float32(temperature)
	}

	return NewRemoteRecognizer(cfg), nil
}

// Recognize uploads the clip as an in-memory WAV file and returns the transcript.
func (r *RemoteRecognizer) Recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	if clip.IsEmpty() {
		return "", apperrors.Wrap(apperrors.ErrUnrecognized, "empty audio clip")
	}

	wav, err := clip.WAV()
	if err != nil {
		return "", fmt.Errorf("failed to encode audio: %w", err)
	}

	req := openai.AudioRequest{
		Model:       r.config.Model,
		FilePath:    "audio.wav",
		Reader:      bytes.NewReader(wav),
		Prompt:      r.config.Prompt,
		Temperature: r.config.Temperature,
		Language:    r.config.Language,
		Format:      openai.AudioResponseFormatJSON,
	}
	resp, err := r.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("createTranscription failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", apperrors.Wrap(apperrors.ErrUnrecognized, "empty transcription")
	}
	return text, nil
}

// GetProviderInfo returns metadata about the OpenAI backend
func (r *RemoteRecognizer) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:             providerName,
		DisplayName:      "OpenAI Whisper API",
		Type:             provider.ProviderTypeRemote,
		Version:          "1.0.0",
		SupportedFormats: []provider.AudioFormat{provider.FormatWAV},
		MaxFileSizeMB:    25,
		RequiresInternet: true,
		RequiresAPIKey:   true,
		DefaultModel:     r.config.Model,
	}
}

// ValidateConfiguration checks the API key. Keys for OpenAI-compatible
// servers on a custom base URL are only required to be present.
func (r *RemoteRecognizer) ValidateConfiguration() error {
	keyType := "OpenAI"
	if r.config.BaseURL != defaultBaseURL {
		keyType = "OpenAI-compatible"
	}
	if err := config.ValidateAPIKey(r.config.APIKey, keyType); err != nil {
		return err
	}
	if r.config.Temperature < 0 || r.config.Temperature > 1 {
		return apperrors.InvalidField("temperature", "must be between 0.0 and 1.0")
	}
	return nil
}

// HealthCheck lists models to verify the API is reachable and the key is accepted
func (r *RemoteRecognizer) HealthCheck(ctx context.Context) error {
	if err := r.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai health check failed: %w", err)
	}
	return nil
}
