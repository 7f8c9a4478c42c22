package config

import "time"

// Default configuration constants
const (
	// Server defaults
	DefaultHost         = "0.0.0.0"
	DefaultHTTPPort     = "8501"
	DefaultEnvironment  = "development"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 0 // streamed responses run as long as recognition does
	DefaultIdleTimeout  = 120 * time.Second

	// Upload defaults
	DefaultChunkSize       = 1024 * 1024
	DefaultMaxUploadSizeMB = 100
	DefaultAudioExtension  = ".wav"
	DefaultProgressTick    = 100 * time.Millisecond

	// Recognition defaults
	DefaultProvider           = "openai"
	DefaultRecognitionTimeout = 120 * time.Second

	// Live listening defaults
	DefaultStopKeyword         = "stop"
	DefaultCalibrationDuration = 500 * time.Millisecond
	DefaultListenTimeout       = 5 * time.Second
	DefaultPauseThreshold      = 800 * time.Millisecond
	DefaultEnergyThreshold     = 300
	DefaultSampleRate          = 16000
	DefaultFramesPerBuffer     = 1024

	// Log defaults
	DefaultLogLevel = "info"
)
