// Package microphone reads 16-bit mono audio from a PortAudio input device.
package microphone

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// Config selects the capture device and format
type Config struct {
	// Device is the input device name; empty or "default" uses the system default
	Device          string
	SampleRate      int
	FramesPerBuffer int
}

// Microphone is an open PortAudio input stream
type Microphone struct {
	mu         sync.Mutex
	stream     *portaudio.Stream
	buffer     []int16
	sampleRate int
	closed     bool
	logger     *zap.Logger
}

// Open initializes PortAudio and starts an input stream.
// Callers must Close the microphone to release the device.
func Open(cfg Config, logger *zap.Logger) (*Microphone, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SampleRate <= 0 || cfg.FramesPerBuffer <= 0 {
		return nil, fmt.Errorf("invalid microphone format: %d Hz, %d frames per buffer", cfg.SampleRate, cfg.FramesPerBuffer)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	buffer := make([]int16, cfg.FramesPerBuffer)
	stream, err := openStream(cfg, buffer, logger)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}

	logger.Info("microphone opened",
		zap.String("device", deviceLabel(cfg.Device)),
		zap.Int("sample_rate", cfg.SampleRate),
		zap.Int("frames_per_buffer", cfg.FramesPerBuffer),
	)

	return &Microphone{
		stream:     stream,
		buffer:     buffer,
		sampleRate: cfg.SampleRate,
		logger:     logger,
	}, nil
}

func openStream(cfg Config, buffer []int16, logger *zap.Logger) (*portaudio.Stream, error) {
	if cfg.Device != "" && cfg.Device != "default" {
		device, err := findInputDevice(cfg.Device)
		if err == nil {
			params := portaudio.StreamParameters{
				Input: portaudio.StreamDeviceParameters{
					Device:   device,
					Channels: 1,
					Latency:  device.DefaultLowInputLatency,
				},
				SampleRate:      float64(cfg.SampleRate),
				FramesPerBuffer: cfg.FramesPerBuffer,
			}
			return portaudio.OpenStream(params, buffer)
		}
		logger.Warn("input device not found, using default", zap.String("device", cfg.Device))
	}
	return portaudio.OpenDefaultStream(1, 0, float64(cfg.SampleRate), cfg.FramesPerBuffer, buffer)
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", name)
}

// SampleRate returns the capture rate in Hz
func (m *Microphone) SampleRate() int {
	return m.sampleRate
}

// FramesPerBuffer returns the number of samples returned by each Read
func (m *Microphone) FramesPerBuffer() int {
	return len(m.buffer)
}

// Read blocks until the next buffer has been captured
func (m *Microphone) Read(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errors.New("microphone is closed")
	}

	if err := m.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return nil, fmt.Errorf("failed to read from microphone: %w", err)
	}

	samples := make([]int16, len(m.buffer))
	copy(samples, m.buffer)
	return samples, nil
}

// Close stops the stream and releases PortAudio. It is safe to call more than once.
func (m *Microphone) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if err := m.stream.Stop(); err != nil {
		m.logger.Debug("failed to stop audio stream", zap.Error(err))
	}
	closeErr := m.stream.Close()
	termErr := portaudio.Terminate()

	m.logger.Info("microphone closed")
	if closeErr != nil {
		return fmt.Errorf("failed to close audio stream: %w", closeErr)
	}
	if termErr != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", termErr)
	}
	return nil
}

// DeviceInfo describes an available input device
type DeviceInfo struct {
	Name              string  `json:"name"`
	MaxInputChannels  int     `json:"max_input_channels"`
	DefaultSampleRate float64 `json:"default_sample_rate"`
	IsDefault         bool    `json:"is_default"`
}

// ListInputDevices returns the devices that can capture audio
func ListInputDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	var defaultName string
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultName = def.Name
	}

	var inputs []DeviceInfo
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 {
			inputs = append(inputs, DeviceInfo{
				Name:              dev.Name,
				MaxInputChannels:  dev.MaxInputChannels,
				DefaultSampleRate: dev.DefaultSampleRate,
				IsDefault:         dev.Name == defaultName,
			})
		}
	}
	return inputs, nil
}

func deviceLabel(name string) string {
	if name == "" {
		return "default"
	}
	return name
}
