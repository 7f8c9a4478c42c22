package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"s2t/internal/api/errors"
	"s2t/internal/api/middleware"
	"s2t/internal/api/v1/dto"
	"s2t/internal/api/v1/services"
	"s2t/internal/app/converter"
	apperrors "s2t/internal/app/errors"
)

// multipartOverhead covers boundaries and part headers around the file
const multipartOverhead = 64 << 10

// UploadLimits restricts what the upload endpoint accepts
type UploadLimits struct {
	MaxBytes  int64
	Extension string
}

// TranscriptionHandler handles file transcription endpoints
type TranscriptionHandler struct {
	service services.FileService
	limits  UploadLimits
	logger  *zap.Logger
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service services.FileService, limits UploadLimits, logger *zap.Logger) *TranscriptionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptionHandler{
		service: service,
		limits:  limits,
		logger:  logger,
	}
}

type sseEvent struct {
	name string
	data interface{}
}

// Upload handles POST /api/v1/transcriptions/file
//
// The multipart field "file" must hold a WAV file. The response is a
// text/event-stream of one "info" event, "progress" events and one "result" event.
func (h *TranscriptionHandler) Upload(c *gin.Context) {
	if h.limits.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.limits.MaxBytes+multipartOverhead)
	}

	var req dto.UploadRequest
	if err := middleware.ValidateForm(c, &req); err != nil {
		if apperrors.Is(err, apperrors.ErrUploadTooLarge) {
			h.rejectTooLarge(c)
			return
		}
		middleware.HandleError(c, err)
		return
	}

	if !strings.EqualFold(filepath.Ext(req.File.Filename), h.limits.Extension) {
		middleware.HandleError(c, errors.NewBadRequestError("only "+h.limits.Extension+" files are accepted"))
		return
	}
	if h.limits.MaxBytes > 0 && req.File.Size > h.limits.MaxBytes {
		h.rejectTooLarge(c)
		return
	}

	file, err := req.File.Open()
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	up := converter.Upload{Name: req.File.Filename, Size: req.File.Size, Body: file}
	events := make(chan sseEvent, 8)

	go func() {
		defer close(events)
		defer file.Close()

		send(ctx, events, sseEvent{dto.EventInfo, dto.InfoEvent{Message: converter.FileProcessingNotice}})
		sink := converter.ProgressFunc(func(percent int) {
			send(ctx, events, sseEvent{dto.EventProgress, dto.ProgressEvent{Percent: percent}})
		})
		result := h.service.Transcribe(ctx, up, sink)
		send(ctx, events, sseEvent{dto.EventResult, result})
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(ev.name, ev.data)
		return true
	})

	h.logger.Debug("upload stream finished",
		zap.String("file", req.File.Filename),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
	)
}

// rejectTooLarge answers 413 and drops the connection so the rest of the body is never read
func (h *TranscriptionHandler) rejectTooLarge(c *gin.Context) {
	c.Header("Connection", "close")
	middleware.HandleError(c, errors.NewPayloadTooLargeError(h.limits.MaxBytes))
}

// send delivers ev unless the client has gone away
func send(ctx context.Context, events chan<- sseEvent, ev sseEvent) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
