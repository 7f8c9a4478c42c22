package listener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "s2t/internal/app/errors"
)

const (
	silent = 10
	loud   = 5000
)

// scriptedSource plays back one square-wave buffer per scripted amplitude,
// then repeats the tail amplitude forever.
type scriptedSource struct {
	rate    int
	frames  int
	script  []int16
	tail    int16
	reads   int
	readErr error
}

func newScriptedSource(tail int16, script ...int16) *scriptedSource {
	return &scriptedSource{rate: 1000, frames: 100, script: script, tail: tail}
}

func (s *scriptedSource) SampleRate() int      { return s.rate }
func (s *scriptedSource) FramesPerBuffer() int { return s.frames }
func (s *scriptedSource) Close() error         { return nil }

func (s *scriptedSource) Read(ctx context.Context) ([]int16, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	amp := s.tail
	if s.reads < len(s.script) {
		amp = s.script[s.reads]
	}
	s.reads++

	buf := make([]int16, s.frames)
	for i := range buf {
		if i%2 == 0 {
			buf[i] = amp
		} else {
			buf[i] = -amp
		}
	}
	return buf, nil
}

func repeat(amp int16, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = amp
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DynamicThreshold = false
	cfg.PauseThreshold = 300 * time.Millisecond
	cfg.PhraseThreshold = 200 * time.Millisecond
	cfg.NonSpeakingDuration = 200 * time.Millisecond
	return cfg
}

func countAmplitude(samples []int16, amp int16) int {
	n := 0
	for _, s := range samples {
		if s == amp || s == -amp {
			n++
		}
	}
	return n
}

func TestAdjustForAmbientNoiseRaisesThreshold(t *testing.T) {
	l := New(DefaultConfig(), nil)
	src := newScriptedSource(1000)

	err := l.AdjustForAmbientNoise(context.Background(), src, 550*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, 5, src.reads)
	assert.Greater(t, l.Threshold(), 300.0)
	assert.Less(t, l.Threshold(), 1500.0)
}

func TestAdjustForAmbientNoiseLowersThresholdInQuietRoom(t *testing.T) {
	l := New(DefaultConfig(), nil)
	src := newScriptedSource(0)

	require.NoError(t, l.AdjustForAmbientNoise(context.Background(), src, time.Second))
	assert.Less(t, l.Threshold(), 300.0)
}

func TestListenCapturesUtterance(t *testing.T) {
	script := append(repeat(silent, 5), repeat(loud, 5)...)
	src := newScriptedSource(silent, script...)
	l := New(testConfig(), nil)

	clip, err := l.Listen(context.Background(), src)
	require.NoError(t, err)

	// one leading silent buffer, five loud, two trailing silent
	assert.Equal(t, 800, clip.Frames())
	assert.Equal(t, 1000, clip.SampleRate)
	assert.Equal(t, 1, clip.Channels)
	assert.Equal(t, 500, countAmplitude(clip.PCM16(), loud))
}

func TestListenDiscardsShortPhrase(t *testing.T) {
	script := append(repeat(silent, 3), loud)
	script = append(script, repeat(silent, 6)...)
	script = append(script, repeat(loud, 4)...)
	src := newScriptedSource(silent, script...)
	l := New(testConfig(), nil)

	clip, err := l.Listen(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 400, countAmplitude(clip.PCM16(), loud))
	assert.Equal(t, 700, clip.Frames())
}

func TestListenTimesOutWithoutSpeech(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 550 * time.Millisecond
	src := newScriptedSource(silent)
	l := New(cfg, nil)

	_, err := l.Listen(context.Background(), src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrListenTimeout))
	assert.Equal(t, 5, src.reads)
}

func TestListenPhraseTimeLimit(t *testing.T) {
	cfg := testConfig()
	cfg.PhraseTimeLimit = 350 * time.Millisecond
	src := newScriptedSource(loud, silent)
	l := New(cfg, nil)

	clip, err := l.Listen(context.Background(), src)
	require.NoError(t, err)
	// the triggering buffer plus three more before the limit trips
	assert.Equal(t, 400, countAmplitude(clip.PCM16(), loud))
}

func TestListenHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(testConfig(), nil)
	_, err := l.Listen(ctx, newScriptedSource(silent))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListenPropagatesReadErrors(t *testing.T) {
	src := newScriptedSource(silent)
	src.readErr = errors.New("device unplugged")

	_, err := New(testConfig(), nil).Listen(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
	assert.False(t, errors.Is(err, apperrors.ErrListenTimeout))
}

func TestListenRejectsInvalidSource(t *testing.T) {
	src := newScriptedSource(silent)
	src.rate = 0

	_, err := New(testConfig(), nil).Listen(context.Background(), src)
	assert.Error(t, err)
}
