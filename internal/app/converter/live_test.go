package converter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"s2t/internal/app/audio/listener"
	apperrors "s2t/internal/app/errors"
	"s2t/internal/app/testutil"
)

// recordingRenderer keeps every update it receives
type recordingRenderer struct {
	mu       sync.Mutex
	states   []LiveState
	infos    []string
	said     []string
	warnings []string
}

func (r *recordingRenderer) State(state LiveState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingRenderer) Info(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, message)
}

func (r *recordingRenderer) Said(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.said = append(r.said, message)
}

func (r *recordingRenderer) Warning(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, message)
}

func (r *recordingRenderer) lastState() LiveState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return ""
	}
	return r.states[len(r.states)-1]
}

type liveFixture struct {
	rec      *testutil.MockRecognizer
	mic      *testutil.FakeSource
	listener *testutil.ScriptedListener
	renderer *recordingRenderer
	lt       *LiveTranscriber
}

func newLiveFixture(t *testing.T, results []testutil.RecognitionResult, outcomes ...testutil.ListenOutcome) *liveFixture {
	t.Helper()
	f := &liveFixture{
		rec:      testutil.NewMockRecognizer(results...),
		mic:      testutil.NewFakeSource(),
		listener: testutil.NewScriptedListener(outcomes...),
		renderer: &recordingRenderer{},
	}
	f.lt = NewLiveTranscriber(f.rec,
		func(ctx context.Context) (listener.Source, error) { return f.mic, nil },
		func() UtteranceListener { return f.listener },
		LiveOptions{RecognitionTimeout: time.Second},
		nil, nil)
	return f
}

func utterances(n int) []testutil.ListenOutcome {
	out := make([]testutil.ListenOutcome, n)
	for i := range out {
		out[i] = testutil.Utterance(200 * time.Millisecond)
	}
	return out
}

func TestLiveEchoesUntilStopKeyword(t *testing.T) {
	f := newLiveFixture(t,
		[]testutil.RecognitionResult{testutil.Say("Hello"), testutil.Say("  STOP ")},
		utterances(2)...)

	result := f.lt.Run(context.Background(), f.renderer)

	assert.Equal(t, apperrors.KindNone, result.Kind)
	assert.Equal(t, "Listening stopped.", result.Message)
	assert.Equal(t, []string{"You said: hello"}, f.renderer.said)
	assert.Equal(t, []string{"Listening... (say 'stop' to end)"}, f.renderer.infos)
	assert.Empty(t, f.renderer.warnings)

	assert.Equal(t, 1, f.listener.Calibrations)
	assert.Equal(t, 2, f.rec.Calls())
	assert.Equal(t, 1, f.mic.CloseCount)
	assert.False(t, f.lt.Busy())

	assert.Equal(t, []LiveState{
		StateIdle, StateCalibrating,
		StateListening, StateTranscribing,
		StateListening, StateTranscribing,
		StateStopped,
	}, f.renderer.states)
}

func TestLiveStopKeywordIgnoresPunctuation(t *testing.T) {
	for _, said := range []string{"stop", "Stop.", "STOP!", " stop? "} {
		t.Run(said, func(t *testing.T) {
			f := newLiveFixture(t, []testutil.RecognitionResult{testutil.Say(said)}, utterances(1)...)

			result := f.lt.Run(context.Background(), f.renderer)
			assert.Equal(t, "Listening stopped.", result.Message)
			assert.Empty(t, f.renderer.said)
		})
	}
}

func TestLiveKeywordMustMatchWholeUtterance(t *testing.T) {
	f := newLiveFixture(t,
		[]testutil.RecognitionResult{testutil.Say("please stop now"), testutil.Say("stop")},
		utterances(2)...)

	result := f.lt.Run(context.Background(), f.renderer)
	assert.Equal(t, "Listening stopped.", result.Message)
	assert.Equal(t, []string{"You said: please stop now"}, f.renderer.said)
}

func TestLiveCustomKeyword(t *testing.T) {
	f := newLiveFixture(t,
		[]testutil.RecognitionResult{testutil.Say("stop"), testutil.Say("Over and out.")},
		utterances(2)...)
	f.lt = NewLiveTranscriber(f.rec,
		func(ctx context.Context) (listener.Source, error) { return f.mic, nil },
		func() UtteranceListener { return f.listener },
		LiveOptions{Keyword: "over and out"},
		nil, nil)

	result := f.lt.Run(context.Background(), f.renderer)

	assert.Equal(t, "Listening stopped.", result.Message)
	assert.Equal(t, []string{"Listening... (say 'over and out' to end)"}, f.renderer.infos)
	assert.Equal(t, []string{"You said: stop"}, f.renderer.said)
}

func TestLiveUnrecognizedWarnsAndContinues(t *testing.T) {
	f := newLiveFixture(t,
		[]testutil.RecognitionResult{
			testutil.Fail(apperrors.Wrap(apperrors.ErrUnrecognized, "empty transcript")),
			testutil.Say("stop"),
		},
		utterances(2)...)

	result := f.lt.Run(context.Background(), f.renderer)

	assert.Equal(t, "Listening stopped.", result.Message)
	assert.Equal(t, []string{"Could not understand the audio. Please try again."}, f.renderer.warnings)
	assert.Empty(t, f.renderer.said)
}

func TestLiveListenTimeoutKeepsListening(t *testing.T) {
	outcomes := []testutil.ListenOutcome{
		testutil.ListenError(apperrors.ErrListenTimeout),
		testutil.ListenError(apperrors.ErrListenTimeout),
		testutil.Utterance(100 * time.Millisecond),
	}
	f := newLiveFixture(t, []testutil.RecognitionResult{testutil.Say("stop")}, outcomes...)

	result := f.lt.Run(context.Background(), f.renderer)

	assert.Equal(t, "Listening stopped.", result.Message)
	assert.Equal(t, 3, f.listener.ListenCount())
	assert.Equal(t, 1, f.rec.Calls())
	assert.Empty(t, f.renderer.warnings)
}

func TestLiveFailuresEndSession(t *testing.T) {
	tests := []struct {
		name     string
		results  []testutil.RecognitionResult
		outcomes []testutil.ListenOutcome
		message  string
	}{
		{
			name:     "backend error",
			results:  []testutil.RecognitionResult{testutil.Say("hello"), testutil.Fail(errors.New("network unreachable"))},
			outcomes: utterances(2),
			message:  "An error occurred: network unreachable",
		},
		{
			name:     "device error",
			outcomes: []testutil.ListenOutcome{testutil.ListenError(errors.New("device unplugged"))},
			message:  "An error occurred: device unplugged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLiveFixture(t, tt.results, tt.outcomes...)

			result := f.lt.Run(context.Background(), f.renderer)

			assert.True(t, result.Failed())
			assert.Equal(t, tt.message, result.Message)
			assert.Equal(t, 1, f.mic.CloseCount)
			assert.Equal(t, StateStopped, f.renderer.lastState())
			assert.False(t, f.lt.Busy())
		})
	}
}

func TestLiveMicrophoneOpenFailure(t *testing.T) {
	scripted := testutil.NewScriptedListener()
	lt := NewLiveTranscriber(testutil.NewMockRecognizer(),
		func(ctx context.Context) (listener.Source, error) { return nil, errors.New("no input device") },
		func() UtteranceListener { return scripted },
		LiveOptions{}, nil, nil)
	renderer := &recordingRenderer{}

	result := lt.Run(context.Background(), renderer)

	assert.True(t, result.Failed())
	assert.Equal(t, "An error occurred: failed to open microphone: no input device", result.Message)
	assert.Zero(t, scripted.Calibrations)
	assert.Equal(t, StateStopped, renderer.lastState())
}

func TestLiveCalibrationFailure(t *testing.T) {
	f := newLiveFixture(t, nil)
	f.listener.CalibrateErr = errors.New("stream stalled")

	result := f.lt.Run(context.Background(), f.renderer)

	assert.True(t, result.Failed())
	assert.Contains(t, result.Message, "stream stalled")
	assert.Zero(t, f.listener.ListenCount())
	assert.Equal(t, 1, f.mic.CloseCount)
}

func TestLiveCancellation(t *testing.T) {
	// nothing scripted, so Listen blocks until the context ends
	f := newLiveFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan Result, 1)
	go func() { done <- f.lt.Run(ctx, f.renderer) }()

	require.Eventually(t, func() bool { return f.listener.ListenCount() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case result := <-done:
		assert.Equal(t, apperrors.KindNone, result.Kind)
		assert.Equal(t, "Listening cancelled.", result.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.True(t, f.mic.Closed())
	assert.Equal(t, StateStopped, f.renderer.lastState())
}

func TestLiveRejectsConcurrentSession(t *testing.T) {
	f := newLiveFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan Result, 1)
	go func() { done <- f.lt.Run(ctx, f.renderer) }()
	require.Eventually(t, f.lt.Busy, time.Second, 5*time.Millisecond)

	second := &recordingRenderer{}
	result := f.lt.Run(context.Background(), second)
	assert.True(t, result.Failed())
	assert.Equal(t, "An error occurred: "+apperrors.ErrMicrophoneBusy.Error(), result.Message)
	assert.Empty(t, second.states)

	cancel()
	<-done
	assert.False(t, f.lt.Busy())
}

func TestLiveRecoversFromPanic(t *testing.T) {
	f := newLiveFixture(t, nil, utterances(1)...)
	f.rec.PanicWith = "backend exploded"

	var result Result
	assert.NotPanics(t, func() {
		result = f.lt.Run(context.Background(), f.renderer)
	})

	assert.True(t, result.Failed())
	assert.Contains(t, result.Message, "backend exploded")
	assert.Equal(t, 1, f.mic.CloseCount)
	assert.Equal(t, StateStopped, f.renderer.lastState())
	assert.False(t, f.lt.Busy())
}

func TestLiveRecognitionTimeout(t *testing.T) {
	f := newLiveFixture(t, []testutil.RecognitionResult{testutil.Say("late")}, utterances(1)...)
	f.rec.Latency = time.Second
	f.lt = NewLiveTranscriber(f.rec,
		func(ctx context.Context) (listener.Source, error) { return f.mic, nil },
		func() UtteranceListener { return f.listener },
		LiveOptions{RecognitionTimeout: 20 * time.Millisecond},
		nil, nil)

	result := f.lt.Run(context.Background(), f.renderer)

	assert.True(t, result.Failed())
	assert.Contains(t, result.Message, apperrors.ErrProviderTimeout.Error())
}

func TestLiveWithEnergyListener(t *testing.T) {
	// the default listener hears only silence from the fake microphone
	mic := testutil.NewFakeSource()
	lt := NewLiveTranscriber(testutil.NewMockRecognizer(),
		func(ctx context.Context) (listener.Source, error) { return mic, nil },
		nil,
		LiveOptions{CalibrationDuration: 100 * time.Millisecond, Listener: listener.DefaultConfig()},
		nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result := lt.Run(ctx, &recordingRenderer{})
	assert.Equal(t, "Listening cancelled.", result.Message)
	assert.True(t, mic.Closed())
}

func TestLiveMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	f := newLiveFixture(t,
		[]testutil.RecognitionResult{testutil.Say("hi"), testutil.Fail(apperrors.ErrUnrecognized), testutil.Say("stop")},
		utterances(3)...)
	f.lt.metrics = m

	f.lt.Run(context.Background(), f.renderer)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.LiveUtterances.WithLabelValues("success")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.LiveUtterances.WithLabelValues("unrecognized")))
	assert.Equal(t, 0.0, promtest.ToFloat64(m.LiveSessions))
}

func TestLiveLogsCapturedUtterance(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	f := newLiveFixture(t, []testutil.RecognitionResult{testutil.Say("stop")}, utterances(1)...)
	f.lt.logger = zap.New(core)

	f.lt.Run(context.Background(), f.renderer)

	captured := logs.FilterMessage("utterance captured").All()
	require.Len(t, captured, 1)
	fields := captured[0].ContextMap()
	assert.Equal(t, 200*time.Millisecond, fields["duration"])
	// a 16383 amplitude sine has an RMS of about 11585
	assert.InDelta(t, 11585, fields["energy"], 50)
}

func TestNormalizeKeyword(t *testing.T) {
	tests := map[string]string{
		"stop":          "stop",
		"  Stop.  ":     "stop",
		"STOP!?":        "stop",
		"over, and out": "over, and out",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeKeyword(in), "input %q", in)
	}
}
