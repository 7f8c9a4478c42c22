package converter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"s2t/internal/app/api/provider"
	"s2t/internal/app/audio"
	"s2t/internal/app/audio/listener"
	apperrors "s2t/internal/app/errors"
)

// LiveState is a step of the live listening state machine
type LiveState string

const (
	StateIdle         LiveState = "idle"
	StateCalibrating  LiveState = "calibrating"
	StateListening    LiveState = "listening"
	StateTranscribing LiveState = "transcribing"
	StateStopped      LiveState = "stopped"
)

// Renderer displays live session updates. Calls are made from the Run goroutine.
type Renderer interface {
	State(state LiveState)
	Info(message string)
	Said(message string)
	Warning(message string)
}

// UtteranceListener calibrates against and captures utterances from a source
type UtteranceListener interface {
	AdjustForAmbientNoise(ctx context.Context, src listener.Source, duration time.Duration) error
	Listen(ctx context.Context, src listener.Source) (*audio.Clip, error)
}

// MicrophoneOpener acquires the live audio source for one session
type MicrophoneOpener func(ctx context.Context) (listener.Source, error)

// ListenerFactory creates a fresh listener for each session
type ListenerFactory func() UtteranceListener

// LiveTranscriber runs the calibrate, listen, transcribe loop on a microphone.
// Only one session may hold the microphone at a time.
type LiveTranscriber struct {
	recognizer  provider.Recognizer
	openMic     MicrophoneOpener
	newListener ListenerFactory
	options     LiveOptions
	metrics     *Metrics
	logger      *zap.Logger
	busy        atomic.Bool
}

// NewLiveTranscriber creates a live transcriber. A nil listener factory uses
// the energy-threshold listener configured from options.
func NewLiveTranscriber(recognizer provider.Recognizer, openMic MicrophoneOpener, newListener ListenerFactory, options LiveOptions, metrics *Metrics, logger *zap.Logger) *LiveTranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	options = options.withDefaults()
	if newListener == nil {
		lc := options.Listener
		newListener = func() UtteranceListener {
			return listener.New(lc, logger)
		}
	}
	return &LiveTranscriber{
		recognizer:  recognizer,
		openMic:     openMic,
		newListener: newListener,
		options:     options,
		metrics:     metrics,
		logger:      logger,
	}
}

// Keyword returns the normalized stop keyword
func (t *LiveTranscriber) Keyword() string {
	return normalizeKeyword(t.options.Keyword)
}

// Busy reports whether a session currently holds the microphone
func (t *LiveTranscriber) Busy() bool {
	return t.busy.Load()
}

// Run listens until the stop keyword is heard, an operation fails or ctx is cancelled.
// The returned Result carries the final message; intermediate updates go to r.
func (t *LiveTranscriber) Run(ctx context.Context, r Renderer) (result Result) {
	if !t.busy.CompareAndSwap(false, true) {
		return failedResult(apperrors.ErrMicrophoneBusy)
	}
	defer t.busy.Store(false)

	log := t.logger.With(zap.String("session", uuid.NewString()))
	t.metrics.sessionStarted()
	defer t.metrics.sessionEnded()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("live session panicked", zap.Any("panic", rec))
			result = failedResult(fmt.Errorf("internal error: %v", rec))
		}
		r.State(StateStopped)
		log.Info("live session ended", zap.String("kind", kindLabel(result.Kind)), zap.String("message", result.Message))
	}()

	r.State(StateIdle)
	r.Info(fmt.Sprintf(listeningMsgFormat, t.options.Keyword))

	mic, err := t.openMic(ctx)
	if err != nil {
		return t.endWith(ctx, fmt.Errorf("failed to open microphone: %w", err))
	}
	defer func() {
		if err := mic.Close(); err != nil {
			log.Warn("failed to close microphone", zap.Error(err))
		}
	}()

	l := t.newListener()

	r.State(StateCalibrating)
	if err := l.AdjustForAmbientNoise(ctx, mic, t.options.CalibrationDuration); err != nil {
		return t.endWith(ctx, fmt.Errorf("calibration failed: %w", err))
	}
	log.Debug("calibrated", zap.Duration("duration", t.options.CalibrationDuration))

	for {
		if ctx.Err() != nil {
			return cancelledResult()
		}

		r.State(StateListening)
		clip, err := l.Listen(ctx, mic)
		if apperrors.Is(err, apperrors.ErrListenTimeout) {
			log.Debug("no speech before timeout, listening again")
			continue
		}
		if err != nil {
			return t.endWith(ctx, err)
		}
		log.Debug("utterance captured",
			zap.Duration("duration", clip.Duration()),
			zap.Float64("energy", clip.Energy()),
		)

		r.State(StateTranscribing)
		text, err := t.recognize(ctx, clip)
		kind := apperrors.Classify(err)
		t.metrics.observeUtterance(kind)

		switch kind {
		case apperrors.KindUnrecognized:
			log.Debug("utterance not understood", zap.Error(err))
			r.Warning(liveUnrecognizedMsg)
			continue
		case apperrors.KindOperationFailed:
			return t.endWith(ctx, err)
		}

		lowered := strings.ToLower(strings.TrimSpace(text))
		if normalizeKeyword(lowered) == t.Keyword() {
			log.Info("stop keyword recognized")
			return Result{Kind: apperrors.KindNone, Text: lowered, Message: listeningStoppedMsg}
		}
		r.Said(youSaidPrefix + lowered)
	}
}

func (t *LiveTranscriber) recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	rctx, cancel := context.WithTimeout(ctx, t.options.RecognitionTimeout)
	defer cancel()

	text, err := t.recognizer.Recognize(rctx, clip)
	if err != nil && ctx.Err() == nil && errors.Is(rctx.Err(), context.DeadlineExceeded) {
		return "", apperrors.Wrapf(apperrors.ErrProviderTimeout, "no result after %s", t.options.RecognitionTimeout)
	}
	return text, err
}

// endWith maps an error to the final result; cancellation is not a failure
func (t *LiveTranscriber) endWith(ctx context.Context, err error) Result {
	if ctx.Err() != nil {
		return cancelledResult()
	}
	return failedResult(err)
}

func cancelledResult() Result {
	return Result{Kind: apperrors.KindNone, Message: listeningCancelledMsg}
}

// normalizeKeyword lowercases and strips the punctuation backends append
func normalizeKeyword(s string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(s)), ".,!?")
}
