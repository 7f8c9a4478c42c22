package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"s2t/internal/app/api/provider"
	"s2t/internal/app/audio"
	apperrors "s2t/internal/app/errors"
)

// Progress milestones of the file flow
const (
	writePhaseEnd    = 50
	decodedProgress  = 55
	recognitionCap   = 95
	recognitionStep  = 5
	completeProgress = 100
)

// Upload is one audio file received from a client
type Upload struct {
	// Name is the client-side file name; its extension is kept on the temp file
	Name string
	// Size is the declared length of Body in bytes
	Size int64
	Body io.Reader
}

// FileTranscriber runs the upload, decode and recognize flow for one file at a time
type FileTranscriber struct {
	recognizer provider.Recognizer
	options    FileOptions
	metrics    *Metrics
	logger     *zap.Logger
}

// NewFileTranscriber creates a file transcriber. Nil metrics or logger disable them.
func NewFileTranscriber(recognizer provider.Recognizer, options FileOptions, metrics *Metrics, logger *zap.Logger) *FileTranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileTranscriber{
		recognizer: recognizer,
		options:    options.withDefaults(),
		metrics:    metrics,
		logger:     logger,
	}
}

// Transcribe stores the upload in a temporary file, decodes it and recognizes it.
// Progress is reported to sink as non-decreasing percentages. Every failure is
// converted into the returned Result; the temporary file is always removed.
func (t *FileTranscriber) Transcribe(ctx context.Context, up Upload, sink ProgressSink) (result Result) {
	progress := newMonotonicProgress(sink)
	start := time.Now()
	log := t.logger.With(zap.String("file", up.Name), zap.Int64("size", up.Size))

	defer func() {
		if r := recover(); r != nil {
			log.Error("file transcription panicked", zap.Any("panic", r))
			result = failedResult(fmt.Errorf("internal error: %v", r))
		}
		t.metrics.observeFile(result.Kind, time.Since(start))
	}()

	progress.report(0)

	text, err := t.transcribe(ctx, up, progress, log)
	switch apperrors.Classify(err) {
	case apperrors.KindNone:
		progress.report(completeProgress)
		log.Info("file transcribed", zap.Duration("elapsed", time.Since(start)))
		return Result{Kind: apperrors.KindNone, Text: text, Message: fileResultLabel + text}
	case apperrors.KindUnrecognized:
		progress.report(completeProgress)
		log.Warn("file audio not understood", zap.Error(err))
		return Result{Kind: apperrors.KindUnrecognized, Message: fileUnrecognizedMsg}
	default:
		log.Error("file transcription failed", zap.Error(err), zap.Int("progress", progress.current()))
		return failedResult(err)
	}
}

func (t *FileTranscriber) transcribe(ctx context.Context, up Upload, progress *monotonicProgress, log *zap.Logger) (string, error) {
	if up.Size <= 0 {
		return "", apperrors.ErrEmptyUpload
	}
	if up.Body == nil {
		return "", apperrors.Wrap(apperrors.ErrEmptyUpload, "upload has no body")
	}

	tmp, err := os.CreateTemp(t.options.TempDir, "s2t-*"+filepath.Ext(up.Name))
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to remove temporary file", zap.String("path", tmpPath), zap.Error(err))
		}
	}()

	if err := t.writeChunks(ctx, tmp, up, progress); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}
	log.Debug("upload stored", zap.String("path", tmpPath))

	clip, err := audio.OpenFile(tmpPath)
	if err != nil {
		return "", err
	}
	progress.report(decodedProgress)
	log.Debug("audio decoded", zap.Duration("duration", clip.Duration()), zap.Int("sample_rate", clip.SampleRate))

	return t.recognize(ctx, clip, progress)
}

// writeChunks copies the upload in ChunkSize pieces, reporting written*50/size after each
func (t *FileTranscriber) writeChunks(ctx context.Context, w io.Writer, up Upload, progress *monotonicProgress) error {
	buf := make([]byte, t.options.ChunkSize)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := io.ReadFull(up.Body, buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return fmt.Errorf("failed to write temporary file: %w", err)
			}
			written += int64(n)
			progress.report(int(min(written*writePhaseEnd/up.Size, writePhaseEnd)))
		}

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("failed to read upload: %w", readErr)
		}
	}

	if written < up.Size {
		return apperrors.Wrapf(apperrors.ErrUploadTruncated, "received %d of %d bytes", written, up.Size)
	}
	return nil
}

// recognize runs the backend while a ticker advances progress towards 95
func (t *FileTranscriber) recognize(ctx context.Context, clip *audio.Clip, progress *monotonicProgress) (string, error) {
	rctx, cancel := context.WithTimeout(ctx, t.options.RecognitionTimeout)
	defer cancel()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(t.options.ProgressTick)
		defer ticker.Stop()

		p := decodedProgress
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p < recognitionCap {
					p += recognitionStep
					progress.report(p)
				}
			}
		}
	}()
	// stop the ticker before the caller reports completion, even on panic
	defer wg.Wait()
	defer close(done)

	text, err := t.recognizer.Recognize(rctx, clip)
	if err != nil && ctx.Err() == nil && errors.Is(rctx.Err(), context.DeadlineExceeded) {
		return "", apperrors.Wrapf(apperrors.ErrProviderTimeout, "no result after %s", t.options.RecognitionTimeout)
	}
	return text, err
}
