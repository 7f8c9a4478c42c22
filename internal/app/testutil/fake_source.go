package testutil

import (
	"context"
	"sync"
	"time"

	"s2t/internal/app/audio"
	"s2t/internal/app/audio/listener"
)

// FakeSource is a silent listener.Source that tracks Close calls
type FakeSource struct {
	mu         sync.Mutex
	Rate       int
	Frames     int
	CloseCount int
}

// NewFakeSource returns a 16 kHz source with 1024-frame buffers
func NewFakeSource() *FakeSource {
	return &FakeSource{Rate: 16000, Frames: 1024}
}

func (s *FakeSource) SampleRate() int      { return s.Rate }
func (s *FakeSource) FramesPerBuffer() int { return s.Frames }

// Read returns one buffer of silence
func (s *FakeSource) Read(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return make([]int16, s.Frames), nil
}

// Close records the call
func (s *FakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseCount++
	return nil
}

// Closed reports whether Close was called at least once
func (s *FakeSource) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CloseCount > 0
}

// ListenOutcome is one scripted result of ScriptedListener.Listen
type ListenOutcome struct {
	Clip *audio.Clip
	Err  error
}

// Utterance scripts a captured clip of the given length
func Utterance(d time.Duration) ListenOutcome {
	return ListenOutcome{Clip: audio.NewClip(ToneSamples(16000, d), 16000, 1)}
}

// ListenError scripts a Listen failure
func ListenError(err error) ListenOutcome {
	return ListenOutcome{Err: err}
}

// ScriptedListener replays scripted Listen outcomes.
// When the script is exhausted Listen blocks until the context is done.
type ScriptedListener struct {
	mu           sync.Mutex
	outcomes     []ListenOutcome
	CalibrateErr error
	Calibrations int
	Listens      int
}

// NewScriptedListener creates a listener that returns outcomes in order
func NewScriptedListener(outcomes ...ListenOutcome) *ScriptedListener {
	return &ScriptedListener{outcomes: outcomes}
}

// AdjustForAmbientNoise records the calibration
func (l *ScriptedListener) AdjustForAmbientNoise(ctx context.Context, src listener.Source, duration time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calibrations++
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.CalibrateErr
}

// Listen returns the next scripted outcome
func (l *ScriptedListener) Listen(ctx context.Context, src listener.Source) (*audio.Clip, error) {
	l.mu.Lock()
	l.Listens++
	if err := ctx.Err(); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	if len(l.outcomes) == 0 {
		l.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	next := l.outcomes[0]
	l.outcomes = l.outcomes[1:]
	l.mu.Unlock()
	return next.Clip, next.Err
}

// ListenCount returns the number of Listen calls so far
func (l *ScriptedListener) ListenCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Listens
}
