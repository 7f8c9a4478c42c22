// Package listener captures single utterances from a live audio source
// using an adaptive energy threshold.
package listener

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"s2t/internal/app/audio"
	apperrors "s2t/internal/app/errors"
)

// Source is a blocking live audio input such as a microphone
type Source interface {
	// SampleRate is the capture rate in Hz
	SampleRate() int
	// FramesPerBuffer is the number of mono samples returned by each Read
	FramesPerBuffer() int
	// Read blocks until the next buffer of samples is available
	Read(ctx context.Context) ([]int16, error)
	// Close releases the device
	Close() error
}

// Config holds utterance detection parameters
type Config struct {
	// EnergyThreshold is the starting RMS level above which audio counts as speech
	EnergyThreshold float64
	// DynamicThreshold keeps adapting the threshold to ambient noise while waiting for speech
	DynamicThreshold bool
	// DynamicDamping is the fraction of the old threshold kept per second
	DynamicDamping float64
	// DynamicRatio is the multiple of ambient energy treated as speech
	DynamicRatio float64
	// PauseThreshold is the length of silence that ends a phrase
	PauseThreshold time.Duration
	// PhraseThreshold is the minimum speech length kept as an utterance
	PhraseThreshold time.Duration
	// NonSpeakingDuration is the silence kept on both sides of a phrase
	NonSpeakingDuration time.Duration
	// Timeout bounds the wait for a phrase to start; zero waits forever
	Timeout time.Duration
	// PhraseTimeLimit cuts phrases longer than this; zero means no limit
	PhraseTimeLimit time.Duration
}

// DefaultConfig returns the detection defaults
func DefaultConfig() Config {
	return Config{
		EnergyThreshold:     300,
		DynamicThreshold:    true,
		DynamicDamping:      0.15,
		DynamicRatio:        1.5,
		PauseThreshold:      800 * time.Millisecond,
		PhraseThreshold:     300 * time.Millisecond,
		NonSpeakingDuration: 500 * time.Millisecond,
	}
}

// Listener tracks the energy threshold for one listening session
type Listener struct {
	config    Config
	threshold float64
	logger    *zap.Logger
}

// New creates a listener. A nil logger disables logging.
func New(config Config, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.NonSpeakingDuration > config.PauseThreshold {
		config.NonSpeakingDuration = config.PauseThreshold
	}
	return &Listener{
		config:    config,
		threshold: config.EnergyThreshold,
		logger:    logger,
	}
}

// Threshold returns the current energy threshold
func (l *Listener) Threshold() float64 {
	return l.threshold
}

// AdjustForAmbientNoise samples the source for the given duration and
// moves the energy threshold towards the observed ambient level.
func (l *Listener) AdjustForAmbientNoise(ctx context.Context, src Source, duration time.Duration) error {
	spb, err := secondsPerBuffer(src)
	if err != nil {
		return err
	}

	elapsed := 0.0
	for {
		elapsed += spb
		if elapsed > duration.Seconds() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		buffer, err := src.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read ambient audio: %w", err)
		}
		l.adapt(audio.RMS(buffer), spb)
	}

	l.logger.Debug("adjusted for ambient noise",
		zap.Duration("duration", duration),
		zap.Float64("energy_threshold", l.threshold),
	)
	return nil
}

// Listen blocks until one complete utterance has been captured.
// It returns ErrListenTimeout when no phrase starts within Config.Timeout.
func (l *Listener) Listen(ctx context.Context, src Source) (*audio.Clip, error) {
	spb, err := secondsPerBuffer(src)
	if err != nil {
		return nil, err
	}

	pauseBuffers := buffersFor(l.config.PauseThreshold, spb)
	phraseBuffers := buffersFor(l.config.PhraseThreshold, spb)
	nonSpeakingBuffers := buffersFor(l.config.NonSpeakingDuration, spb)

	var (
		frames     [][]int16
		elapsed    float64
		pauseCount int
	)

	for {
		frames = frames[:0]

		// wait for the energy to cross the threshold
		for {
			elapsed += spb
			if l.config.Timeout > 0 && elapsed > l.config.Timeout.Seconds() {
				return nil, apperrors.ErrListenTimeout
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			buffer, err := src.Read(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to read audio: %w", err)
			}
			frames = append(frames, buffer)
			if len(frames) > nonSpeakingBuffers {
				frames = frames[1:]
			}

			energy := audio.RMS(buffer)
			if energy > l.threshold {
				break
			}
			if l.config.DynamicThreshold {
				l.adapt(energy, spb)
			}
		}

		// record until the speaker pauses
		pauseCount = 0
		phraseCount := 0
		phraseStart := elapsed
		for {
			elapsed += spb
			if l.config.PhraseTimeLimit > 0 && elapsed-phraseStart > l.config.PhraseTimeLimit.Seconds() {
				break
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			buffer, err := src.Read(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to read audio: %w", err)
			}
			frames = append(frames, buffer)
			phraseCount++

			if audio.RMS(buffer) > l.threshold {
				pauseCount = 0
			} else {
				pauseCount++
			}
			if pauseCount > pauseBuffers {
				break
			}
		}

		phraseCount -= pauseCount
		if phraseCount >= phraseBuffers {
			break
		}
		l.logger.Debug("discarded phrase shorter than threshold", zap.Int("buffers", phraseCount))
	}

	// keep only NonSpeakingDuration of trailing silence
	for i := 0; i < pauseCount-nonSpeakingBuffers && len(frames) > 0; i++ {
		frames = frames[:len(frames)-1]
	}

	samples := make([]int16, 0, len(frames)*src.FramesPerBuffer())
	for _, f := range frames {
		samples = append(samples, f...)
	}

	clip := audio.NewClip(samples, src.SampleRate(), 1)
	l.logger.Debug("captured utterance", zap.Duration("duration", clip.Duration()))
	return clip, nil
}

// adapt moves the threshold towards ratio*energy with per-second damping
func (l *Listener) adapt(energy, spb float64) {
	damping := math.Pow(l.config.DynamicDamping, spb)
	target := energy * l.config.DynamicRatio
	l.threshold = l.threshold*damping + target*(1-damping)
}

func secondsPerBuffer(src Source) (float64, error) {
	if src.SampleRate() <= 0 || src.FramesPerBuffer() <= 0 {
		return 0, fmt.Errorf("invalid source format: %d Hz, %d frames per buffer", src.SampleRate(), src.FramesPerBuffer())
	}
	return float64(src.FramesPerBuffer()) / float64(src.SampleRate()), nil
}

func buffersFor(d time.Duration, spb float64) int {
	return int(math.Ceil(d.Seconds() / spb))
}
