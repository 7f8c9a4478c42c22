// Package app assembles the recognizers, transcription flows and metrics
// from a loaded configuration.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"s2t/internal/app/api/provider"
	"s2t/internal/app/audio/listener"
	"s2t/internal/app/audio/microphone"
	"s2t/internal/app/converter"
	"s2t/internal/config"
)

// App holds the wired components shared by the CLI and the HTTP server
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *provider.DefaultProviderRegistry
	Metrics  *prometheus.Registry
	Files    *converter.FileTranscriber
	Live     *converter.LiveTranscriber
}

// Option customizes New
type Option func(*options)

type options struct {
	openMic converter.MicrophoneOpener
}

// WithMicrophone replaces the PortAudio microphone
func WithMicrophone(open converter.MicrophoneOpener) Option {
	return func(o *options) {
		o.openMic = open
	}
}

// New builds every component from cfg. The configured default provider must
// initialize; other configured providers are skipped with a warning on failure.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{openMic: defaultMicrophone(cfg.Live, logger)}
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry, err := buildRegistry(cfg, provider.NewMetrics(reg), logger)
	if err != nil {
		return nil, err
	}
	recognizer, err := registry.GetDefaultProvider()
	if err != nil {
		return nil, err
	}

	flowMetrics := converter.NewMetrics(reg)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Metrics:  reg,
		Files: converter.NewFileTranscriber(recognizer,
			converter.FileOptionsFromConfig(cfg), flowMetrics, logger.Named("file")),
		Live: converter.NewLiveTranscriber(recognizer, o.openMic, nil,
			converter.LiveOptionsFromConfig(cfg), flowMetrics, logger.Named("live")),
	}, nil
}

func buildRegistry(cfg *config.Config, metrics *provider.Metrics, logger *zap.Logger) (*provider.DefaultProviderRegistry, error) {
	registry := provider.NewProviderRegistry()
	defaultName := cfg.Recognition.Provider

	recognizer, err := provider.NewFromConfig(defaultName, cfg.ProviderSettings(defaultName))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider %s: %w", defaultName, err)
	}
	if err := registry.RegisterProvider(defaultName, provider.Instrument(recognizer, metrics)); err != nil {
		return nil, err
	}

	for name, settings := range cfg.Recognition.Providers {
		if name == defaultName {
			continue
		}
		recognizer, err := provider.NewFromConfig(name, settings)
		if err != nil {
			logger.Warn("skipping provider", zap.String("provider", name), zap.Error(err))
			continue
		}
		if err := registry.RegisterProvider(name, provider.Instrument(recognizer, metrics)); err != nil {
			logger.Warn("skipping provider", zap.String("provider", name), zap.Error(err))
		}
	}

	logger.Info("recognition providers ready",
		zap.String("default", defaultName),
		zap.Strings("providers", registry.ListProviders()),
	)
	return registry, nil
}

func defaultMicrophone(cfg config.LiveConfig, logger *zap.Logger) converter.MicrophoneOpener {
	micConfig := microphone.Config{
		Device:          cfg.Device,
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}
	return func(ctx context.Context) (listener.Source, error) {
		mic, err := microphone.Open(micConfig, logger.Named("microphone"))
		if err != nil {
			return nil, err
		}
		return mic, nil
	}
}
