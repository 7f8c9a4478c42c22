package converter

import (
	"time"

	"s2t/internal/app/audio/listener"
	"s2t/internal/config"
)

// FileOptions tunes the file transcription flow
type FileOptions struct {
	ChunkSize          int
	TempDir            string
	ProgressTick       time.Duration
	RecognitionTimeout time.Duration
}

// LiveOptions tunes the live transcription flow
type LiveOptions struct {
	Keyword             string
	CalibrationDuration time.Duration
	RecognitionTimeout  time.Duration
	Listener            listener.Config
}

// FileOptionsFromConfig maps the upload and recognition sections
func FileOptionsFromConfig(cfg *config.Config) FileOptions {
	return FileOptions{
		ChunkSize:          cfg.Upload.ChunkSize,
		TempDir:            cfg.Upload.TempDir,
		ProgressTick:       cfg.Upload.ProgressTick,
		RecognitionTimeout: cfg.Recognition.Timeout,
	}
}

// LiveOptionsFromConfig maps the live and recognition sections
func LiveOptionsFromConfig(cfg *config.Config) LiveOptions {
	lc := listener.DefaultConfig()
	lc.EnergyThreshold = cfg.Live.EnergyThreshold
	lc.DynamicThreshold = cfg.Live.DynamicThreshold
	lc.PauseThreshold = cfg.Live.PauseThreshold
	lc.Timeout = cfg.Live.ListenTimeout
	lc.PhraseTimeLimit = cfg.Live.PhraseTimeLimit

	return LiveOptions{
		Keyword:             cfg.Live.Keyword,
		CalibrationDuration: cfg.Live.CalibrationDuration,
		RecognitionTimeout:  cfg.Recognition.Timeout,
		Listener:            lc,
	}
}

func (o FileOptions) withDefaults() FileOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = config.DefaultChunkSize
	}
	if o.ProgressTick <= 0 {
		o.ProgressTick = config.DefaultProgressTick
	}
	if o.RecognitionTimeout <= 0 {
		o.RecognitionTimeout = config.DefaultRecognitionTimeout
	}
	return o
}

func (o LiveOptions) withDefaults() LiveOptions {
	if o.Keyword == "" {
		o.Keyword = config.DefaultStopKeyword
	}
	if o.CalibrationDuration <= 0 {
		o.CalibrationDuration = config.DefaultCalibrationDuration
	}
	if o.RecognitionTimeout <= 0 {
		o.RecognitionTimeout = config.DefaultRecognitionTimeout
	}
	return o
}
