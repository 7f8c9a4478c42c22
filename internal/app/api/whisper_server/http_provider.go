package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	"s2t/internal/app/api/provider"
	"s2t/internal/app/audio"
	apperrors "s2t/internal/app/errors"
)

const providerName = "whisper_server"

// whisper.cpp marks silence and non-speech with bracketed tokens
var nonSpeechToken = regexp.MustCompile(`\[(BLANK_AUDIO|SILENCE|MUSIC|NOISE|INAUDIBLE)\]|\((silence|music|noise|inaudible)\)`)

// WhisperServerProvider implements recognition via HTTP to a whisper-server instance
type WhisperServerProvider struct {
	config WhisperServerConfig
	client *http.Client
}

// WhisperServerConfig represents configuration for whisper-server HTTP API
type WhisperServerConfig struct {
	BaseURL       string            `yaml:"base_url"`       // Base URL of whisper-server (e.g., "http://192.168.1.100:8080")
	InferencePath string            `yaml:"inference_path"` // Inference endpoint path (default: "/inference")
	Timeout       time.Duration     `yaml:"timeout"`        // Request timeout
	Language      string            `yaml:"language"`       // Default language code
	Temperature   float64           `yaml:"temperature"`    // Decoding temperature (0.0-1.0)
	Translate     bool              `yaml:"translate"`      // Translate to English
	CustomHeaders map[string]string `yaml:"custom_headers"` // Custom HTTP headers
}

// WhisperServerResponse represents the JSON response from whisper-server
type WhisperServerResponse struct {
	Text     string  `json:"text,omitempty"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// NewWhisperServerProvider creates a new whisper-server HTTP provider
func NewWhisperServerProvider(config WhisperServerConfig) *WhisperServerProvider {
	// Set defaults
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.CustomHeaders == nil {
		config.CustomHeaders = make(map[string]string)
	}

	return &WhisperServerProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// NewWhisperServerProviderFromSettings creates provider from generic settings
func NewWhisperServerProviderFromSettings(settings provider.Settings) (*WhisperServerProvider, error) {
	timeout, err := settings.Duration("timeout", 0)
	if err != nil {
		return nil, err
	}

	config := WhisperServerConfig{
		BaseURL:       settings.String("base_url", ""),
		InferencePath: settings.String("inference_path", ""),
		Timeout:       timeout,
		Language:      settings.String("language", ""),
	}
	if temperature, ok := settings["temperature"].(float64); ok {
		config.Temperature = temperature
	}
	if translate, ok := settings["translate"].(bool); ok {
		config.Translate = translate
	}

	// Extract custom headers
	if headers, ok := settings["custom_headers"].(map[string]interface{}); ok {
		config.CustomHeaders = make(map[string]string)
		for k, v := range headers {
			if str, ok := v.(string); ok {
				config.CustomHeaders[k] = str
			}
		}
	}

	return NewWhisperServerProvider(config), nil
}

// Recognize posts the clip to the inference endpoint and returns the transcript
func (wsp *WhisperServerProvider) Recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	if clip.IsEmpty() {
		return "", apperrors.Wrap(apperrors.ErrUnrecognized, "empty audio clip")
	}

	body, contentType, err := wsp.createMultipartForm(clip)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart form: %w", err)
	}

	url := wsp.config.BaseURL + wsp.config.InferencePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", contentType)
	for key, value := range wsp.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}

	resp, err := wsp.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper-server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseData)))
	}

	var parsed WhisperServerResponse
	if err := json.Unmarshal(responseData, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("whisper-server error: %s", parsed.Error)
	}

	text := cleanTranscript(parsed.Text)
	if text == "" {
		return "", apperrors.Wrap(apperrors.ErrUnrecognized, "no speech in transcription")
	}
	return text, nil
}

// createMultipartForm creates the multipart form for the API request
func (wsp *WhisperServerProvider) createMultipartForm(clip *audio.Clip) (*bytes.Buffer, string, error) {
	wav, err := clip.WAV()
	if err != nil {
		return nil, "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return nil, "", fmt.Errorf("failed to write audio: %w", err)
	}

	params := map[string]string{
		"response_format": "json",
		"temperature":     fmt.Sprintf("%.2f", wsp.config.Temperature),
	}
	if wsp.config.Language != "" {
		params["language"] = wsp.config.Language
	}
	if wsp.config.Translate {
		params["translate"] = "true"
	}

	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// cleanTranscript drops non-speech markers and collapses whitespace
func cleanTranscript(text string) string {
	text = nonSpeechToken.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// GetProviderInfo returns metadata about the whisper-server provider
func (wsp *WhisperServerProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:             providerName,
		DisplayName:      "Whisper Server (HTTP API)",
		Type:             provider.ProviderTypeLocal,
		Version:          "1.0.0",
		SupportedFormats: []provider.AudioFormat{provider.FormatWAV},
		RequiresInternet: false,
		RequiresAPIKey:   false,
		DefaultModel:     "whisper-server", // Server manages model internally
	}
}

// ValidateConfiguration validates the provider configuration
func (wsp *WhisperServerProvider) ValidateConfiguration() error {
	if wsp.config.BaseURL == "" {
		return apperrors.RequiredField("base_url")
	}

	if !strings.HasPrefix(wsp.config.BaseURL, "http://") && !strings.HasPrefix(wsp.config.BaseURL, "https://") {
		return apperrors.InvalidField("base_url", "must start with http:// or https://")
	}

	if wsp.config.Temperature < 0.0 || wsp.config.Temperature > 1.0 {
		return apperrors.InvalidField("temperature", "must be between 0.0 and 1.0")
	}

	return nil
}

// HealthCheck performs a health check on the provider
func (wsp *WhisperServerProvider) HealthCheck(ctx context.Context) error {
	if err := wsp.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wsp.config.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	for key, value := range wsp.config.CustomHeaders {
		req.Header.Set(key, value)
	}

	resp, err := wsp.client.Do(req)
	if err != nil {
		return fmt.Errorf("server connectivity test failed: %w", err)
	}
	defer resp.Body.Close()

	// 503 can come from a proxy in front of a running server
	if resp.StatusCode >= 500 && resp.StatusCode != http.StatusServiceUnavailable {
		return fmt.Errorf("server returned error status: %d", resp.StatusCode)
	}

	return nil
}
