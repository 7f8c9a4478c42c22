package whisper

import (
	"s2t/internal/app/api/provider"
)

func init() {
	// Register openai provider with the factory
	provider.RegisterProvider(providerName, createOpenAIProvider)
}

// createOpenAIProvider creates an OpenAI Whisper recognizer from configuration
func createOpenAIProvider(settings provider.Settings) (provider.Recognizer, error) {
	return NewRemoteRecognizerFromSettings(settings)
}
