package testutil

import (
	"context"
	"sync"
	"time"

	"s2t/internal/app/api/provider"
	"s2t/internal/app/audio"
)

// RecognitionResult is one scripted answer of a MockRecognizer
type RecognitionResult struct {
	Text string
	Err  error
}

// Say scripts a successful transcript
func Say(text string) RecognitionResult {
	return RecognitionResult{Text: text}
}

// Fail scripts a recognition error
func Fail(err error) RecognitionResult {
	return RecognitionResult{Err: err}
}

// MockRecognizer is a provider.Recognizer that replays scripted results in order.
// Once the script is exhausted it returns DefaultResponse.
type MockRecognizer struct {
	mu sync.Mutex

	// Configuration options
	Name            string
	DefaultResponse string
	Latency         time.Duration
	PanicWith       interface{}
	HealthErr       error

	// State tracking
	results   []RecognitionResult
	CallCount int
	Clips     []*audio.Clip
}

// NewMockRecognizer creates a MockRecognizer with sensible defaults
func NewMockRecognizer(results ...RecognitionResult) *MockRecognizer {
	return &MockRecognizer{
		Name:            "mock",
		DefaultResponse: "This is a mock transcription result.",
		results:         results,
	}
}

// Recognize implements provider.Recognizer
func (m *MockRecognizer) Recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	m.mu.Lock()
	m.CallCount++
	m.Clips = append(m.Clips, clip)
	result := RecognitionResult{Text: m.DefaultResponse}
	if len(m.results) > 0 {
		result = m.results[0]
		m.results = m.results[1:]
	}
	latency := m.Latency
	panicWith := m.PanicWith
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if panicWith != nil {
		panic(panicWith)
	}
	return result.Text, result.Err
}

// Calls returns the number of Recognize calls so far
func (m *MockRecognizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// GetProviderInfo implements provider.Recognizer
func (m *MockRecognizer) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:             m.Name,
		DisplayName:      "Mock Recognizer",
		Type:             provider.ProviderTypeLocal,
		Version:          "1.0.0",
		SupportedFormats: []provider.AudioFormat{provider.FormatWAV},
	}
}

// ValidateConfiguration implements provider.Recognizer
func (m *MockRecognizer) ValidateConfiguration() error {
	return nil
}

// HealthCheck implements provider.Recognizer
func (m *MockRecognizer) HealthCheck(ctx context.Context) error {
	return m.HealthErr
}
