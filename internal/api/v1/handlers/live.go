package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"s2t/internal/api/middleware"
	"s2t/internal/api/v1/dto"
	"s2t/internal/api/v1/services"
	"s2t/internal/app/converter"
)

const liveWriteTimeout = 10 * time.Second

// LiveHandler bridges microphone sessions to a websocket
type LiveHandler struct {
	service  services.LiveService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(service services.LiveService, logger *zap.Logger) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// same policy as the CORS middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve handles GET /api/v1/live
//
// The server pushes {"type":"state|info|said|warning|result"} frames while
// the session runs. A {"type":"cancel"} frame or a disconnect ends it.
func (h *LiveHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("request_id", c.GetString(middleware.RequestIDKey)))
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sock := &socketRenderer{conn: conn, cancel: cancel, logger: log}
	go sock.readLoop()

	result := h.service.Run(ctx, sock)
	sock.write(dto.LiveMessage{
		Type:    dto.LiveTypeResult,
		Kind:    string(result.Kind),
		Text:    result.Text,
		Message: result.Message,
	})
	sock.close()
}

// socketRenderer is a converter.Renderer that writes JSON frames
type socketRenderer struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	logger *zap.Logger
}

var _ converter.Renderer = (*socketRenderer)(nil)

func (s *socketRenderer) State(state converter.LiveState) {
	s.write(dto.LiveMessage{Type: dto.LiveTypeState, Message: string(state)})
}

func (s *socketRenderer) Info(message string) {
	s.write(dto.LiveMessage{Type: dto.LiveTypeInfo, Message: message})
}

func (s *socketRenderer) Said(message string) {
	s.write(dto.LiveMessage{Type: dto.LiveTypeSaid, Message: message})
}

func (s *socketRenderer) Warning(message string) {
	s.write(dto.LiveMessage{Type: dto.LiveTypeWarning, Message: message})
}

// write sends one frame; a failed write means the client is gone
func (s *socketRenderer) write(msg dto.LiveMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug("live frame not delivered", zap.String("type", msg.Type), zap.Error(err))
		s.cancel()
	}
}

// readLoop cancels the session on a cancel frame or when the socket closes
func (s *socketRenderer) readLoop() {
	defer s.cancel()
	for {
		var msg dto.LiveMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == dto.LiveTypeCancel {
			s.logger.Info("live session cancelled by client")
			return
		}
	}
}

func (s *socketRenderer) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}
