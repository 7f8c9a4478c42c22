package whisper_server

import (
	"s2t/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createWhisperServerProvider)
}

func createWhisperServerProvider(settings provider.Settings) (provider.Recognizer, error) {
	return NewWhisperServerProviderFromSettings(settings)
}
